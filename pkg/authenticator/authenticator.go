package authenticator

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Authenticator defines the interface for all authenticators
type Authenticator interface {
	// Name returns the authenticator name (e.g., "basic", "token")
	Name() string

	// Authenticate validates the presented credentials
	Authenticate(ctx context.Context, input Input) Result

	// Status checks if the authenticator is healthy
	Status(ctx context.Context) error
}

// Input contains the input for authentication
type Input struct {
	Login       string
	Credentials []byte
	ClientIP    string
}

// Result is the outcome of an authentication attempt. A rejected result
// carries a reason meant for logs only; callers answer every rejection the
// same way.
type Result struct {
	accepted bool
	username string
	reason   string
}

// Accepted returns a successful result for username
func Accepted(username string) Result {
	return Result{accepted: true, username: username}
}

// Rejected returns a failed result with a reason for the audit log
func Rejected(reason string) Result {
	return Result{reason: reason}
}

// OK reports whether the attempt was accepted
func (r Result) OK() bool {
	return r.accepted
}

// Username returns the authenticated username of an accepted result
func (r Result) Username() string {
	return r.username
}

// Reason returns why the attempt was rejected
func (r Result) Reason() string {
	return r.reason
}

// Registry holds all registered authenticators
type Registry struct {
	mu             sync.RWMutex
	authenticators map[string]Authenticator
	enabled        map[string]bool
}

// NewRegistry creates a new authenticator registry
func NewRegistry() *Registry {
	return &Registry{
		authenticators: make(map[string]Authenticator),
		enabled:        make(map[string]bool),
	}
}

// Register adds an authenticator to the registry
func (r *Registry) Register(auth Authenticator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authenticators[auth.Name()] = auth
}

// Enable enables an authenticator by name
func (r *Registry) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authenticators[name]; !ok {
		return fmt.Errorf("authenticator %q not found", name)
	}
	r.enabled[name] = true
	return nil
}

// Disable disables an authenticator by name
func (r *Registry) Disable(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.enabled, name)
}

// Get returns an authenticator by name
func (r *Registry) Get(name string) (Authenticator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	auth, ok := r.authenticators[name]
	return auth, ok
}

// GetEnabled returns an authenticator by name only if it is enabled
func (r *Registry) GetEnabled(name string) (Authenticator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.enabled[name] {
		return nil, false
	}
	auth, ok := r.authenticators[name]
	return auth, ok
}

// IsEnabled checks if an authenticator is enabled
func (r *Registry) IsEnabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[name]
}

// Installed returns all installed authenticator names, sorted
func (r *Registry) Installed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.authenticators))
	for name := range r.authenticators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enabled returns all enabled authenticator names, sorted
func (r *Registry) Enabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.enabled))
	for name := range r.enabled {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
