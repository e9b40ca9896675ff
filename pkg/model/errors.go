package model

import (
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

var (
	// ErrNotFound is returned when an identifier or unique lookup matches nothing
	ErrNotFound = store.ErrNotFound

	// ErrMissingField is returned by Get for a key that was never set
	ErrMissingField = errors.New("missing field")

	// ErrNotPersisted is returned when an identifier is requested before the
	// document was saved
	ErrNotPersisted = errors.New("document has not been saved")

	// ErrPasswordTooLong is returned by SetPassword for a password bcrypt
	// cannot hash without truncating it
	ErrPasswordTooLong = fmt.Errorf("password exceeds %d bytes", MaxPasswordBytes)

	// ErrUsernameTaken is returned by Register when the username is in use
	ErrUsernameTaken = errors.New("username already in use")
)
