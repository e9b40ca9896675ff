package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/tripkeeper/pkg/audit"
	"github.com/doodlesbykumbi/tripkeeper/pkg/config"
	"github.com/doodlesbykumbi/tripkeeper/pkg/model"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/middleware"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

// RegisterTripsEndpoints registers the trip endpoints. Every route requires
// authentication and only ever exposes the caller's own trips.
func RegisterTripsEndpoints(s *server.Server) {
	documents := s.DocumentStore
	cfg := s.Config

	tripsRouter := s.Router.PathPrefix("/trips").Subrouter()
	tripsRouter.Use(s.AuthMiddleware.Middleware)

	tripsRouter.HandleFunc("/", handleCreateTrip(documents, cfg)).Methods("POST")
	tripsRouter.HandleFunc("/", handleListTrips(documents, cfg)).Methods("GET")
	tripsRouter.HandleFunc("/{id}", handleGetTrip(documents)).Methods("GET")
	tripsRouter.HandleFunc("/{id}", handleUpdateTrip(documents, cfg)).Methods("PUT")
	tripsRouter.HandleFunc("/{id}", handleDeleteTrip(documents, cfg)).Methods("DELETE")
}

// respondTripNotFound answers the way clients of the trip API expect a miss
func respondTripNotFound(w http.ResponseWriter) {
	respondWithJSON(w, http.StatusNotFound, map[string]interface{}{"data": []interface{}{}})
}

// applyTripBody copies name and waypoints from a request body onto trip
func applyTripBody(trip *model.Trip, body map[string]interface{}) error {
	if v, ok := body["name"]; ok {
		name, isString := v.(string)
		if !isString {
			return errors.New("name must be a string")
		}
		trip.SetName(name)
	}

	if v, ok := body["waypoints"]; ok {
		items, isList := v.([]interface{})
		if !isList {
			return errors.New("waypoints must be a list")
		}
		waypoints := make([]model.Waypoint, 0, len(items))
		for i, item := range items {
			m, isMap := item.(map[string]interface{})
			if !isMap {
				return fmt.Errorf("waypoint %d must be an object", i)
			}
			waypoints = append(waypoints, model.Waypoint{
				Name: fmt.Sprint(valueOr(m["name"], "")),
				Lat:  fmt.Sprint(valueOr(m["lat"], "")),
				Long: fmt.Sprint(valueOr(m["long"], "")),
			})
		}
		trip.SetWaypoints(waypoints)
	}
	return nil
}

func valueOr(v interface{}, fallback interface{}) interface{} {
	if v == nil {
		return fallback
	}
	return v
}

// loadOwnTrip loads the trip in the route and checks the caller owns it
func loadOwnTrip(w http.ResponseWriter, r *http.Request, documents store.DocumentStore) (*model.Trip, bool) {
	trip, err := model.LoadTrip(documents, mux.Vars(r)["id"])
	if errors.Is(err, model.ErrNotFound) {
		respondTripNotFound(w)
		return nil, false
	}
	if err != nil {
		respondWithInternalError(w, r, err)
		return nil, false
	}
	if trip.Owner() != currentUser(r) {
		respondTripNotFound(w)
		return nil, false
	}
	return trip, true
}

func tripEvent(r *http.Request, cfg *config.Config, operation string, trip *model.Trip) audit.DocumentEvent {
	id, _ := trip.Identifier()
	return audit.DocumentEvent{
		Username:   currentUser(r),
		ClientIP:   middleware.ClientIP(r, cfg),
		Kind:       model.KindTrip.String(),
		DocumentID: id,
		Operation:  operation,
	}
}

func handleCreateTrip(documents store.DocumentStore, cfg func() *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Request body must be a JSON object")
			return
		}

		trip := model.NewTrip(documents, currentUser(r))
		if err := applyTripBody(trip, body); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := trip.Save(); err != nil {
			event := tripEvent(r, cfg(), audit.OperationCreate, trip)
			event.ErrorMessage = err.Error()
			audit.Log(event)
			respondWithInternalError(w, r, err)
			return
		}
		event := tripEvent(r, cfg(), audit.OperationCreate, trip)
		event.Success = true
		audit.Log(event)

		respondWithJSON(w, http.StatusOK, trip.Map())
	}
}

func handleListTrips(documents store.DocumentStore, cfg func() *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trips, err := model.FetchTrips(documents, store.Fields{"owner": currentUser(r)})
		if err != nil {
			respondWithInternalError(w, r, err)
			return
		}

		limit := cfg().FetchLimitMax
		if len(trips) > limit {
			trips = trips[:limit]
		}
		results := make([]map[string]interface{}, 0, len(trips))
		for _, trip := range trips {
			results = append(results, trip.Map())
		}
		respondWithJSON(w, http.StatusOK, results)
	}
}

func handleGetTrip(documents store.DocumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trip, ok := loadOwnTrip(w, r, documents)
		if !ok {
			return
		}
		respondWithJSON(w, http.StatusOK, trip.Map())
	}
}

func handleUpdateTrip(documents store.DocumentStore, cfg func() *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeBody(r)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Request body must be a JSON object")
			return
		}

		trip, ok := loadOwnTrip(w, r, documents)
		if !ok {
			return
		}
		if err := applyTripBody(trip, body); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		event := tripEvent(r, cfg(), audit.OperationUpdate, trip)
		if _, err := trip.Save(); err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			respondWithInternalError(w, r, err)
			return
		}
		event.Success = true
		audit.Log(event)

		respondWithJSON(w, http.StatusOK, trip.Map())
	}
}

func handleDeleteTrip(documents store.DocumentStore, cfg func() *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trip, ok := loadOwnTrip(w, r, documents)
		if !ok {
			return
		}
		deleted := trip.Map()

		event := tripEvent(r, cfg(), audit.OperationDelete, trip)
		removed, err := trip.Delete()
		if err != nil {
			event.ErrorMessage = err.Error()
			audit.Log(event)
			respondWithInternalError(w, r, err)
			return
		}
		if !removed {
			respondTripNotFound(w)
			return
		}
		event.Success = true
		audit.Log(event)

		respondWithJSON(w, http.StatusOK, deleted)
	}
}
