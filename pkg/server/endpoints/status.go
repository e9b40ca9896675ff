package endpoints

import (
	"log"
	"net/http"

	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

// StatusResponse represents the response from GET /
type StatusResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// AuthenticatorsResponse represents the response from /authenticators
type AuthenticatorsResponse struct {
	Installed []string `json:"installed"`
	Enabled   []string `json:"enabled"`
}

// RegisterStatusEndpoints registers the status and info endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Status (no auth required)
	s.Router.HandleFunc("/", handleStatus(s.HealthStore)).Methods("GET")

	// GET /authenticators - List authenticators (no auth required)
	s.Router.HandleFunc("/authenticators", handleAuthenticators(s.Authenticators)).Methods("GET")
}

func handleStatus(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if healthStore != nil {
			if err := healthStore.CheckConnectivity(); err != nil {
				log.Printf("store connectivity check failed: %v", err)
				respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
					Status: "error",
					Store:  "unavailable",
				})
				return
			}
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok", Store: "ok"})
	}
}

func handleAuthenticators(registry *authenticator.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, AuthenticatorsResponse{
			Installed: registry.Installed(),
			Enabled:   registry.Enabled(),
		})
	}
}
