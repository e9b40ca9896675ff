package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/middleware"
)

const errInternal = "Internal server error"

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithInternalError logs err and answers 500 without leaking it
func respondWithInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	respondWithError(w, http.StatusInternalServerError, errInternal)
}

// decodeBody decodes a JSON object request body. An empty body yields an
// empty map.
func decodeBody(r *http.Request) (map[string]interface{}, error) {
	body := map[string]interface{}{}
	if r.Body == nil || r.ContentLength == 0 {
		return body, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	return body, nil
}

// nonEmptyString returns body[key] when it is a non-empty string
func nonEmptyString(body map[string]interface{}, key string) (string, bool) {
	s, ok := body[key].(string)
	return s, ok && s != ""
}

// currentUser returns the username set by the auth middleware
func currentUser(r *http.Request) string {
	username, _ := middleware.Username(r.Context())
	return username
}
