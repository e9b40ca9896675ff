// Package server provides the HTTP server for the tripkeeper API.
//
// It uses gorilla/mux for routing, wraps the router with access logging and
// panic recovery from gorilla/handlers, and owns the authenticator registry
// used by the auth middleware.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, documents, health, tokens, "0.0.0.0", "8080")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - /users/ - Registration and the caller's own user document
//   - /users/search - Field equality search over users
//   - /authn/login - Exchange basic credentials for a session token
//   - /trips/ and /trips/{id} - The caller's trips
//   - / - Status
package server
