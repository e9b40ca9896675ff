package endpoints

import (
	"errors"
	"net/http"

	"github.com/doodlesbykumbi/tripkeeper/pkg/audit"
	"github.com/doodlesbykumbi/tripkeeper/pkg/config"
	"github.com/doodlesbykumbi/tripkeeper/pkg/model"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/middleware"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

const (
	errMissingCredentials = "Request requires username and password"
	errUsernameTaken      = "Username already in use"
	errUsernameImmutable  = "Username cannot be changed"
	errSearchByPassword   = "Cannot search by password"
	errSearchByID         = "Cannot search by _id"
	errPasswordTooLong    = "Password must be at most 72 bytes"
	errUserNotFound       = "User not found"
)

// RegisterUsersEndpoints registers user registration and self-service endpoints
func RegisterUsersEndpoints(s *server.Server) {
	documents := s.DocumentStore
	auth := s.AuthMiddleware
	router := s.Router

	// POST /users/ - Register a user (no auth required)
	router.HandleFunc("/users/", handleCreateUser(documents, s.Config)).Methods("POST")

	router.Handle("/users/search", auth.Middleware(handleSearchUsers(documents, s.Config))).Methods("GET")
	router.Handle("/users/", auth.Middleware(handleGetUser(documents))).Methods("GET")
	router.Handle("/users/", auth.Middleware(handleUpdateUser(documents, s.Config))).Methods("PUT")
	router.Handle("/users/", auth.Middleware(handleDeleteUser(documents, s.Config))).Methods("DELETE")
}

func handleCreateUser(documents store.DocumentStore, cfg func() *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, errMissingCredentials)
			return
		}
		username, okUser := nonEmptyString(body, "username")
		password, okPass := nonEmptyString(body, "password")
		if !okUser || !okPass {
			respondWithError(w, http.StatusBadRequest, errMissingCredentials)
			return
		}

		event := audit.RegisterEvent{Username: username, ClientIP: middleware.ClientIP(r, cfg())}

		id, err := model.Register(documents, username, password)
		if errors.Is(err, model.ErrUsernameTaken) {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			respondWithError(w, http.StatusBadRequest, errUsernameTaken)
			return
		}
		if errors.Is(err, model.ErrPasswordTooLong) {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			respondWithError(w, http.StatusBadRequest, errPasswordTooLong)
			return
		}
		if err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			respondWithInternalError(w, r, err)
			return
		}

		event.Success = true
		audit.Log(event)
		respondWithJSON(w, http.StatusOK, map[string]string{"identifier": id})
	}
}

// loadCurrentCredential loads the credential of the authenticated caller
func loadCurrentCredential(w http.ResponseWriter, r *http.Request, documents store.DocumentStore) (*model.Credential, bool) {
	cred, err := model.LoadCredentialByUsername(documents, currentUser(r))
	if errors.Is(err, model.ErrNotFound) {
		// Token for a user deleted after it was issued
		respondWithError(w, http.StatusNotFound, errUserNotFound)
		return nil, false
	}
	if err != nil {
		respondWithInternalError(w, r, err)
		return nil, false
	}
	return cred, true
}

func handleGetUser(documents store.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := loadCurrentCredential(w, r, documents)
		if !ok {
			return
		}
		respondWithJSON(w, http.StatusOK, cred.Map())
	}
}

func handleUpdateUser(documents store.DocumentStore, cfg func() *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Request body must be a JSON object")
			return
		}

		cred, ok := loadCurrentCredential(w, r, documents)
		if !ok {
			return
		}
		username := currentUser(r)
		if v, present := body["username"]; present && v != username {
			respondWithError(w, http.StatusBadRequest, errUsernameImmutable)
			return
		}

		for key, value := range body {
			switch key {
			case "username", model.IDKey:
				continue
			case "password":
				password, _ := value.(string)
				if password == "" {
					respondWithError(w, http.StatusBadRequest, errMissingCredentials)
					return
				}
				err := cred.SetPassword(password)
				if errors.Is(err, model.ErrPasswordTooLong) {
					respondWithError(w, http.StatusBadRequest, errPasswordTooLong)
					return
				}
				if err != nil {
					respondWithInternalError(w, r, err)
					return
				}
			default:
				cred.Set(key, value)
			}
		}

		id, _ := cred.Identifier()
		event := audit.DocumentEvent{
			Username:   username,
			ClientIP:   middleware.ClientIP(r, cfg()),
			Kind:       model.KindUser.String(),
			DocumentID: id,
			Operation:  audit.OperationUpdate,
		}
		if _, err := cred.Save(); err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			respondWithInternalError(w, r, err)
			return
		}
		event.Success = true
		audit.Log(event)

		respondWithJSON(w, http.StatusOK, cred.Map())
	}
}

func handleDeleteUser(documents store.DocumentStore, cfg func() *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := loadCurrentCredential(w, r, documents)
		if !ok {
			return
		}
		username := currentUser(r)
		deleted := cred.Map()
		id, _ := cred.Identifier()

		trips, err := model.FetchTrips(documents, store.Fields{"owner": username})
		if err != nil {
			respondWithInternalError(w, r, err)
			return
		}
		for _, trip := range trips {
			if _, err := trip.Delete(); err != nil {
				respondWithInternalError(w, r, err)
				return
			}
		}

		event := audit.DocumentEvent{
			Username:   username,
			ClientIP:   middleware.ClientIP(r, cfg()),
			Kind:       model.KindUser.String(),
			DocumentID: id,
			Operation:  audit.OperationDelete,
		}
		if _, err := cred.Delete(); err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			respondWithInternalError(w, r, err)
			return
		}
		event.Success = true
		audit.Log(event)

		respondWithJSON(w, http.StatusOK, deleted)
	}
}

// handleSearchUsers matches users on every query parameter, using the first
// value of each
func handleSearchUsers(documents store.DocumentStore, cfg func() *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := store.Fields{}
		for key, values := range r.URL.Query() {
			switch key {
			case "password":
				respondWithError(w, http.StatusBadRequest, errSearchByPassword)
				return
			case model.IDKey:
				// Identifiers are not stored among the fields
				respondWithError(w, http.StatusBadRequest, errSearchByID)
				return
			}
			if len(values) > 0 {
				query[key] = values[0]
			}
		}

		creds, err := model.FetchCredentials(documents, query)
		if err != nil {
			respondWithInternalError(w, r, err)
			return
		}

		limit := cfg().FetchLimitMax
		if len(creds) > limit {
			creds = creds[:limit]
		}
		results := make([]map[string]interface{}, 0, len(creds))
		for _, cred := range creds {
			results = append(results, cred.Map())
		}
		respondWithJSON(w, http.StatusOK, results)
	}
}
