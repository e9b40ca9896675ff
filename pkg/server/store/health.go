package store

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity verifies the document backend is reachable
	CheckConnectivity() error
}
