// Package basic implements username and password authentication against
// stored credentials.
//
// Every attempt is written to the audit log. The caller only sees an
// accepted or rejected Result; an unknown user and a wrong password are
// indistinguishable from the outside.
package basic
