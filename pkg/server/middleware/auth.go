package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator"
	"github.com/doodlesbykumbi/tripkeeper/pkg/config"
)

// Authenticator registry names the middleware dispatches to
const (
	BasicAuthenticator = "basic"
	TokenAuthenticator = "token"
)

// Error bodies returned for unauthenticated requests
const (
	ErrAuthRequired = "Basic Auth Required."
	ErrInvalidAuth  = "Invalid Auth."
)

type contextKey string

const usernameKey contextKey = "username"

// Auth is middleware that requires an authenticated user on every request.
// It accepts "Authorization: Basic" and, unless restricted to basic,
// "Authorization: Bearer".
type Auth struct {
	registry  *authenticator.Registry
	config    func() *config.Config
	basicOnly bool
}

// NewAuth creates auth middleware over the enabled authenticators of registry
func NewAuth(registry *authenticator.Registry, cfg func() *config.Config) *Auth {
	return &Auth{registry: registry, config: cfg}
}

// BasicOnly returns a copy of the middleware that rejects bearer tokens
func (a *Auth) BasicOnly() *Auth {
	return &Auth{registry: a.registry, config: a.config, basicOnly: true}
}

// WithUsername returns a context carrying the authenticated username
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// Username returns the authenticated username stored by the middleware
func Username(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok && username != ""
}

// Middleware returns an HTTP middleware that authenticates the request
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := a.config()
		header := r.Header.Get("Authorization")
		if header == "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+cfg.Realm+`"`)
			writeError(w, http.StatusUnauthorized, ErrAuthRequired)
			return
		}

		scheme, credentials, _ := strings.Cut(header, " ")
		input := authenticator.Input{ClientIP: ClientIP(r, cfg)}

		var name string
		switch {
		case strings.EqualFold(scheme, "Basic"):
			login, password, ok := parseBasic(credentials)
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrInvalidAuth)
				return
			}
			name = BasicAuthenticator
			input.Login = login
			input.Credentials = []byte(password)
		case strings.EqualFold(scheme, "Bearer") && !a.basicOnly:
			name = TokenAuthenticator
			input.Credentials = []byte(strings.TrimSpace(credentials))
		default:
			w.Header().Set("WWW-Authenticate", `Basic realm="`+cfg.Realm+`"`)
			writeError(w, http.StatusUnauthorized, ErrAuthRequired)
			return
		}

		auth, ok := a.registry.GetEnabled(name)
		if !ok {
			writeError(w, http.StatusUnauthorized, ErrInvalidAuth)
			return
		}

		res := auth.Authenticate(r.Context(), input)
		if !res.OK() {
			writeError(w, http.StatusUnauthorized, ErrInvalidAuth)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), res.Username())))
	})
}

// parseBasic decodes the credentials part of a Basic authorization header
func parseBasic(credentials string) (string, string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(credentials))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// ClientIP returns the address of the client, honouring X-Forwarded-For
// only when the direct peer is a trusted proxy
func ClientIP(r *http.Request, cfg *config.Config) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if cfg == nil || !cfg.IsTrustedProxy(host) {
		return host
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return host
	}
	// Walk right to left past trusted hops
	hops := strings.Split(forwarded, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !cfg.IsTrustedProxy(hop) {
			return hop
		}
		host = hop
	}
	return host
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
