package basic

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/tripkeeper/pkg/audit"
	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator"
	"github.com/doodlesbykumbi/tripkeeper/pkg/model"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

// Name is the registry name of the basic authenticator
const Name = "basic"

// verifyDecoy runs when no credential exists for the login
var verifyDecoy = model.VerifyDecoy

// Authenticator checks a username and password against the stored
// credential of that user
type Authenticator struct {
	store store.DocumentStore
}

// New creates a basic authenticator over the given document store
func New(s store.DocumentStore) *Authenticator {
	return &Authenticator{store: s}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate loads the credential for input.Login and verifies the
// password in input.Credentials. Unknown users and wrong passwords yield
// the same rejected result.
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.Input) authenticator.Result {
	res := a.authenticate(input)
	audit.Log(audit.AuthenticateEvent{
		Username:          input.Login,
		ClientIP:          input.ClientIP,
		AuthenticatorName: Name,
		Success:           res.OK(),
		Reason:            res.Reason(),
	})
	return res
}

func (a *Authenticator) authenticate(input authenticator.Input) authenticator.Result {
	if input.Login == "" {
		return authenticator.Rejected("username is required")
	}

	cred, err := model.LoadCredentialByUsername(a.store, input.Login)
	if errors.Is(err, model.ErrNotFound) {
		verifyDecoy(string(input.Credentials))
		return authenticator.Rejected("user not found")
	}
	if err != nil {
		return authenticator.Rejected("failed to load credential: " + err.Error())
	}

	ok, err := cred.VerifyPassword(string(input.Credentials))
	if err != nil {
		return authenticator.Rejected("failed to verify password: " + err.Error())
	}
	if !ok {
		return authenticator.Rejected("password mismatch")
	}
	return authenticator.Accepted(input.Login)
}

// Status reports the health of the backing store when it can tell
func (a *Authenticator) Status(ctx context.Context) error {
	if hs, ok := a.store.(store.HealthStore); ok {
		return hs.CheckConnectivity()
	}
	return nil
}
