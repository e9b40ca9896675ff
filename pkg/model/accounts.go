package model

import (
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

// Register creates a credential for username with the given password and
// returns its identifier. Returns ErrUsernameTaken if the username is
// already registered.
func Register(s store.DocumentStore, username, password string) (string, error) {
	cred := NewCredential(s, username)
	if err := cred.SetPassword(password); err != nil {
		return "", err
	}

	saved, err := cred.Save()
	if err != nil {
		return "", err
	}
	if !saved {
		return "", ErrUsernameTaken
	}
	return cred.Identifier()
}
