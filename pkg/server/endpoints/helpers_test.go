package endpoints

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/tripkeeper/pkg/audit"
	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator/token"
	"github.com/doodlesbykumbi/tripkeeper/pkg/config"
	"github.com/doodlesbykumbi/tripkeeper/pkg/model"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server"
	gormstore "github.com/doodlesbykumbi/tripkeeper/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store/memory"
)

func init() {
	audit.SetEnabled(false)
}

func newTokenIssuer(t *testing.T) *token.Issuer {
	tokens, err := token.NewIssuer([]byte("endpoint-test-key"), time.Minute)
	require.NoError(t, err)
	return tokens
}

// newTestServer creates a server backed by the in-memory document store
func newTestServer(t *testing.T) *server.Server {
	documents, err := memory.NewDocumentStore(model.Buckets()...)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Store = config.StoreMemory

	s := server.NewServer(cfg, documents, documents, newTokenIssuer(t), "127.0.0.1", "0")
	RegisterAll(s)
	return s
}

// newMockTestServer creates a server backed by the GORM document store over
// sqlmock
func newMockTestServer(t *testing.T) (*server.Server, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	s := server.NewServer(
		config.Default(),
		gormstore.NewDocumentStore(gormDB),
		gormstore.NewHealthStore(gormDB),
		newTokenIssuer(t),
		"127.0.0.1", "0",
	)
	RegisterAll(s)
	return s, mock
}

type requestOption func(r *http.Request)

func withBasicAuth(username, password string) requestOption {
	return func(r *http.Request) {
		r.SetBasicAuth(username, password)
	}
}

func withBearer(tok string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
}

func doRequest(s *server.Server, method, path, body string, opts ...requestOption) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// registerUser registers a user and returns a bearer token for it so later
// requests skip the bcrypt cost of basic auth
func registerUser(t *testing.T, s *server.Server, username, password string) string {
	_, err := model.Register(s.DocumentStore, username, password)
	require.NoError(t, err)
	tok, err := s.Tokens.Issue(username)
	require.NoError(t, err)
	return tok
}
