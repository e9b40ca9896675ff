package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

func TestCredential_PasswordRoundTrip(t *testing.T) {
	cred := NewCredential(newMemoryStore(t), "doge")
	require.NoError(t, cred.SetPassword("1234"))

	ok, err := cred.VerifyPassword("1234")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, wrong := range []string{"12345", "", "wrong", "1234 "} {
		ok, err := cred.VerifyPassword(wrong)
		require.NoError(t, err)
		assert.False(t, ok, wrong)
	}
}

func TestCredential_PasswordLengthLimit(t *testing.T) {
	cred := NewCredential(newMemoryStore(t), "doge")

	longest := strings.Repeat("x", MaxPasswordBytes)
	require.NoError(t, cred.SetPassword(longest))
	ok, err := cred.VerifyPassword(longest)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, n := range []int{MaxPasswordBytes + 1, 80} {
		err := cred.SetPassword(strings.Repeat("y", n))
		assert.ErrorIs(t, err, ErrPasswordTooLong, n)
	}

	// A rejected password leaves the previous hash in place
	ok, err = cred.VerifyPassword(longest)
	require.NoError(t, err)
	assert.True(t, ok)

	// Over-long input can never match
	ok, err = cred.VerifyPassword(longest + "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyDecoy(t *testing.T) {
	VerifyDecoy("1234")
	require.NotEmpty(t, decoyHash)

	cost, err := bcrypt.Cost(decoyHash)
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	s := newMemoryStore(t)

	_, err := Register(s, "doge", strings.Repeat("z", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	creds, err := FetchCredentials(s, store.Fields{"username": "doge"})
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestCredential_SaltIsRandomized(t *testing.T) {
	s := newMemoryStore(t)

	first := NewCredential(s, "doge")
	second := NewCredential(s, "cate")
	require.NoError(t, first.SetPassword("1234"))
	require.NoError(t, second.SetPassword("1234"))

	firstHash, err := first.Get("password")
	require.NoError(t, err)
	secondHash, err := second.Get("password")
	require.NoError(t, err)
	assert.NotEqual(t, firstHash, secondHash)
	assert.NotEqual(t, "1234", firstHash)

	for _, cred := range []*Credential{first, second} {
		ok, err := cred.VerifyPassword("1234")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestCredential_VerifyWithoutPassword(t *testing.T) {
	cred := NewCredential(newMemoryStore(t), "doge")

	_, err := cred.VerifyPassword("1234")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestCredential_SaveRejectsDuplicateUsername(t *testing.T) {
	s := newMemoryStore(t)

	first := NewCredential(s, "doge")
	saved, err := first.Save()
	require.NoError(t, err)
	assert.True(t, saved)

	second := NewCredential(s, "doge")
	saved, err = second.Save()
	require.NoError(t, err)
	assert.False(t, saved)
	assert.False(t, second.Persisted())
	assert.Equal(t, 1, countBucket(t, s, KindUser))
}

func TestCredential_PersistedSaveSkipsUniquenessCheck(t *testing.T) {
	s := newMemoryStore(t)

	cred := NewCredential(s, "doge")
	_, err := cred.Save()
	require.NoError(t, err)

	cred.Set("nickname", "shibe")
	saved, err := cred.Save()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, countBucket(t, s, KindUser))
}

func TestCredential_MapOmitsPassword(t *testing.T) {
	s := newMemoryStore(t)

	id, err := Register(s, "doge", "1234")
	require.NoError(t, err)

	cred, err := LoadCredential(s, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"username": "doge", IDKey: id}, cred.Map())
}

func TestLoadCredentialByUsername(t *testing.T) {
	s := newMemoryStore(t)

	_, err := LoadCredentialByUsername(s, "doge")
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := Register(s, "doge", "1234")
	require.NoError(t, err)

	cred, err := LoadCredentialByUsername(s, "doge")
	require.NoError(t, err)
	got, err := cred.Identifier()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	ok, err := cred.VerifyPassword("1234")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister(t *testing.T) {
	s := newMemoryStore(t)

	creds, err := FetchCredentials(s, store.Fields{"username": "doge"})
	require.NoError(t, err)
	assert.Empty(t, creds)

	id, err := Register(s, "doge", "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	creds, err = FetchCredentials(s, store.Fields{"username": "doge"})
	require.NoError(t, err)
	assert.Len(t, creds, 1)

	_, err = Register(s, "doge", "5678")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	creds, err = FetchCredentials(s, store.Fields{"username": "doge"})
	require.NoError(t, err)
	assert.Len(t, creds, 1)
}

// interleavingStore lands a competing registration between the uniqueness
// lookup and the insert of the credential being saved.
type interleavingStore struct {
	store.DocumentStore
	fired bool
}

func (s *interleavingStore) Find(bucket string, query store.Fields) ([]store.Record, error) {
	recs, err := s.DocumentStore.Find(bucket, query)
	if err != nil || s.fired {
		return recs, err
	}
	s.fired = true
	if _, err := s.DocumentStore.Insert(bucket, query.Clone()); err != nil {
		return nil, err
	}
	return recs, nil
}

func TestCredential_SaveUniquenessIsNotAtomic(t *testing.T) {
	backend := newMemoryStore(t)
	s := &interleavingStore{DocumentStore: backend}

	cred := NewCredential(s, "doge")
	saved, err := cred.Save()
	require.NoError(t, err)
	assert.True(t, saved)

	recs, err := backend.Find(KindUser.Bucket(), store.Fields{"username": "doge"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
