// Package audit writes security-relevant events as RFC5424 syslog lines.
//
// Events cover authentication attempts, user registration and changes to
// stored documents. Every event goes to stdout. When a Store has been set
// with SetStore (tripctl server does so when AUDIT_DATABASE_URL is set) the
// event is also inserted into the audit_events table.
//
// # Usage
//
//	audit.Log(audit.AuthenticateEvent{
//	    Username:          "doge",
//	    ClientIP:          r.RemoteAddr,
//	    AuthenticatorName: "basic",
//	    Success:           true,
//	})
//
// Logging can be switched off with TRIPKEEPER_AUDIT_ENABLED=false or the
// audit_enabled configuration attribute. Passwords never appear in events.
package audit
