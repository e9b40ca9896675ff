// Package token issues and verifies short-lived HS256 session tokens.
//
// A client that passed basic authentication can exchange its password for a
// token at POST /authn/login and present it afterwards as
// "Authorization: Bearer <token>".
package token
