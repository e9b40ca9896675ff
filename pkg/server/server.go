package server

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator"
	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator/basic"
	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator/token"
	"github.com/doodlesbykumbi/tripkeeper/pkg/config"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/middleware"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

type Server struct {
	Router         *mux.Router
	DocumentStore  store.DocumentStore
	HealthStore    store.HealthStore
	Authenticators *authenticator.Registry
	Tokens         *token.Issuer
	AuthMiddleware *middleware.Auth

	mu     sync.RWMutex
	config *config.Config
	srv    *http.Server
}

func NewServer(
	cfg *config.Config,
	documents store.DocumentStore,
	health store.HealthStore,
	tokens *token.Issuer,
	host string,
	port string,
) *Server {
	router := mux.NewRouter()

	s := &Server{
		Router:         router,
		DocumentStore:  documents,
		HealthStore:    health,
		Authenticators: authenticator.NewRegistry(),
		Tokens:         tokens,
		config:         cfg,
	}

	s.Authenticators.Register(basic.New(documents))
	if tokens != nil {
		s.Authenticators.Register(tokens)
	}
	s.enableAuthenticators(cfg)
	s.AuthMiddleware = middleware.NewAuth(s.Authenticators, s.Config)

	s.srv = &http.Server{
		Handler: s.Handler(),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return s
}

// Handler returns the router wrapped with access logging and panic recovery
func (s *Server) Handler() http.Handler {
	return handlers.LoggingHandler(
		os.Stdout,
		handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router),
	)
}

// Config returns the configuration currently in effect
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// UpdateConfig swaps in a reloaded configuration
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	s.enableAuthenticators(cfg)
}

func (s *Server) enableAuthenticators(cfg *config.Config) {
	for _, name := range s.Authenticators.Installed() {
		if cfg.IsAuthenticatorEnabled(name) {
			_ = s.Authenticators.Enable(name)
		} else {
			s.Authenticators.Disable(name)
		}
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
