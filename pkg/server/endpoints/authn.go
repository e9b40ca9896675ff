package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator/token"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server"
)

// RegisterAuthnEndpoints registers the session token endpoint when the
// server has a token issuer
func RegisterAuthnEndpoints(s *server.Server) {
	if s.Tokens == nil {
		return
	}

	// POST /authn/login - Exchange basic credentials for a session token
	s.Router.Handle("/authn/login", s.AuthMiddleware.BasicOnly().Middleware(handleLogin(s.Tokens))).Methods("POST")
}

func handleLogin(tokens *token.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		signed, err := tokens.Issue(currentUser(r))
		if err != nil {
			respondWithInternalError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"token": signed})
	}
}
