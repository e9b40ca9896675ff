package endpoints

import (
	"github.com/doodlesbykumbi/tripkeeper/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterUsersEndpoints(srv)
	RegisterAuthnEndpoints(srv)
	RegisterTripsEndpoints(srv)
}
