// Package authenticator defines the interface shared by tripkeeper
// authenticators.
//
// # Authenticator Interface
//
// All authenticators implement the Authenticator interface:
//
//	type Authenticator interface {
//	    Name() string
//	    Authenticate(ctx context.Context, input Input) Result
//	    Status(ctx context.Context) error
//	}
//
// Authenticate never returns an error. A failed attempt is a Rejected
// Result whose reason is written to the audit log and nowhere else.
//
// # Built-in Authenticators
//
//   - basic: username and password checked against the stored bcrypt hash,
//     see [github.com/doodlesbykumbi/tripkeeper/pkg/authenticator/basic]
//   - token: HS256 session tokens issued by POST /authn/login, see
//     [github.com/doodlesbykumbi/tripkeeper/pkg/authenticator/token]
//
// The server registers both in a Registry at startup and enables them.
package authenticator
