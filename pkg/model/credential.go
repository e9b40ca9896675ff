package model

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

// BcryptCost is the work factor used for every password hash
const BcryptCost = 12

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

const (
	usernameField = "username"
	passwordField = "password"
)

// Credential is a user document that carries a bcrypt password hash.
// It holds a Document rather than extending it and forwards field access to it.
type Credential struct {
	doc *Document
}

// NewCredential returns an unsaved credential for username
func NewCredential(s store.DocumentStore, username string) *Credential {
	c := &Credential{doc: New(s, KindUser)}
	c.doc.Set(usernameField, username)
	return c
}

// LoadCredential loads the credential with the given identifier
func LoadCredential(s store.DocumentStore, id string) (*Credential, error) {
	doc, err := Load(s, KindUser, id)
	if err != nil {
		return nil, err
	}
	return &Credential{doc: doc}, nil
}

// LoadCredentialByUsername loads the first credential registered under
// username. Returns ErrNotFound when there is none.
func LoadCredentialByUsername(s store.DocumentStore, username string) (*Credential, error) {
	creds, err := FetchCredentials(s, store.Fields{usernameField: username})
	if err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, ErrNotFound
	}
	return creds[0], nil
}

// FetchCredentials returns every credential matching query
func FetchCredentials(s store.DocumentStore, query store.Fields) ([]*Credential, error) {
	docs, err := Fetch(s, KindUser, query)
	if err != nil {
		return nil, err
	}
	creds := make([]*Credential, 0, len(docs))
	for _, doc := range docs {
		creds = append(creds, &Credential{doc: doc})
	}
	return creds, nil
}

func (c *Credential) Username() (string, error) {
	return c.doc.GetString(usernameField)
}

func (c *Credential) Get(key string) (interface{}, error) {
	return c.doc.Get(key)
}

func (c *Credential) Set(key string, value interface{}) {
	c.doc.Set(key, value)
}

func (c *Credential) Identifier() (string, error) {
	return c.doc.Identifier()
}

func (c *Credential) Persisted() bool {
	return c.doc.Persisted()
}

func (c *Credential) Delete() (bool, error) {
	return c.doc.Delete()
}

// SetPassword hashes plaintext and stores the resulting bundle in memory,
// replacing any previous hash. The plaintext itself is never kept.
// Returns ErrPasswordTooLong for passwords over MaxPasswordBytes and leaves
// the previous hash in place.
func (c *Credential) SetPassword(plaintext string) error {
	if len(plaintext) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		return err
	}
	c.doc.Set(passwordField, string(hash))
	return nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
// Returns ErrMissingField if no password was ever set.
func (c *Credential) VerifyPassword(plaintext string) (bool, error) {
	hash, err := c.doc.GetString(passwordField)
	if err != nil {
		return false, err
	}
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var (
	decoyOnce sync.Once
	decoyHash []byte
)

// VerifyDecoy does the bcrypt work of VerifyPassword against a fixed hash
// and discards the result. Callers that found no credential use it so an
// unknown username costs as much as a wrong password.
func VerifyDecoy(plaintext string) {
	decoyOnce.Do(func() {
		decoyHash, _ = bcrypt.GenerateFromPassword([]byte("tripkeeper decoy credential"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(decoyHash, []byte(plaintext))
}

// Save persists the credential. An unsaved credential whose username is
// already registered is not written and Save returns false.
//
// The lookup and the insert are separate store operations, so two
// concurrent registrations of one username can both succeed.
func (c *Credential) Save() (bool, error) {
	if !c.doc.Persisted() {
		username, err := c.Username()
		if err != nil {
			return false, err
		}
		existing, err := Fetch(c.doc.store, KindUser, store.Fields{usernameField: username})
		if err != nil {
			return false, err
		}
		if len(existing) > 0 {
			return false, nil
		}
	}
	return c.doc.Save()
}

// Map returns the credential fields without the password hash
func (c *Credential) Map() map[string]interface{} {
	m := c.doc.Map()
	delete(m, passwordField)
	return m
}
