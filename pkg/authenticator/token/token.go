package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/tripkeeper/pkg/authenticator"
)

// Name is the registry name of the token authenticator
const Name = "token"

// DefaultTTL is the lifetime of issued tokens when none is configured
const DefaultTTL = 8 * time.Minute

const issuer = "tripkeeper"

var (
	// ErrInvalidToken is returned for tokens that fail parsing or validation
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingKey is returned when no signing key is configured
	ErrMissingKey = errors.New("token signing key is required")
)

// Issuer signs and verifies HS256 session tokens
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer creates an issuer with the given signing key and token lifetime
func NewIssuer(key []byte, ttl time.Duration) (*Issuer, error) {
	if len(key) == 0 {
		return nil, ErrMissingKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token whose subject is username
func (i *Issuer) Issue(username string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the username
func (i *Issuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Name returns the authenticator name
func (i *Issuer) Name() string {
	return Name
}

// Authenticate accepts a bearer token passed in input.Credentials
func (i *Issuer) Authenticate(ctx context.Context, input authenticator.Input) authenticator.Result {
	username, err := i.Verify(string(input.Credentials))
	if err != nil {
		return authenticator.Rejected(err.Error())
	}
	return authenticator.Accepted(username)
}

// Status always succeeds; verification needs nothing but the key
func (i *Issuer) Status(ctx context.Context) error {
	return nil
}
