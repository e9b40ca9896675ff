// Package middleware holds the HTTP middleware guarding authenticated
// tripkeeper endpoints.
//
// Auth resolves the caller from the Authorization header through the
// authenticator registry and stores the username in the request context,
// where handlers read it back with Username.
package middleware
