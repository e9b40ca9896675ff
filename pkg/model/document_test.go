package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store/memory"
)

func newMemoryStore(t *testing.T) *memory.DocumentStore {
	s, err := memory.NewDocumentStore(Buckets()...)
	require.NoError(t, err)
	return s
}

func countBucket(t *testing.T, s store.DocumentStore, kind Kind) int {
	recs, err := s.Find(kind.Bucket(), nil)
	require.NoError(t, err)
	return len(recs)
}

func TestKind_Bucket(t *testing.T) {
	assert.Equal(t, "User", KindUser.Bucket())
	assert.Equal(t, "Trip", KindTrip.Bucket())
	assert.Equal(t, "", Kind(42).Bucket())
	assert.Equal(t, []string{"User", "Trip"}, Buckets())
}

func TestDocument_SaveInsertsThenUpdates(t *testing.T) {
	s := newMemoryStore(t)

	doc := New(s, KindTrip)
	assert.False(t, doc.Persisted())
	doc.Set("name", "coast")

	saved, err := doc.Save()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, doc.Persisted())

	id, err := doc.Identifier()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, countBucket(t, s, KindTrip))

	doc.Set("name", "mountains")
	saved, err = doc.Save()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, countBucket(t, s, KindTrip))

	again, err := doc.Identifier()
	require.NoError(t, err)
	assert.Equal(t, id, again)

	loaded, err := Load(s, KindTrip, id)
	require.NoError(t, err)
	name, err := loaded.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "mountains", name)
}

func TestDocument_Errors(t *testing.T) {
	s := newMemoryStore(t)

	_, err := Load(s, KindUser, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)

	doc := New(s, KindUser)
	_, err = doc.Get("never-set")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = doc.Identifier()
	assert.ErrorIs(t, err, ErrNotPersisted)

	_, err = doc.Delete()
	assert.ErrorIs(t, err, ErrNotPersisted)
}

func TestDocument_GetStringWrongType(t *testing.T) {
	doc := New(newMemoryStore(t), KindTrip)
	doc.Set("count", 3)

	_, err := doc.GetString("count")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "count")
}

func TestDocument_SetIgnoresIdentifierKey(t *testing.T) {
	s := newMemoryStore(t)

	doc := New(s, KindTrip)
	_, err := doc.Save()
	require.NoError(t, err)
	id, _ := doc.Identifier()

	doc.Set(IDKey, "forged")
	_, err = doc.Get(IDKey)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, id, doc.Map()[IDKey])
}

func TestFromRaw(t *testing.T) {
	s := newMemoryStore(t)

	doc := FromRaw(s, KindTrip, store.Record{ID: "abc", Fields: store.Fields{"name": "coast"}})
	assert.True(t, doc.Persisted())
	id, err := doc.Identifier()
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
	assert.Equal(t, map[string]interface{}{"name": "coast", IDKey: "abc"}, doc.Map())
}

func TestFetch(t *testing.T) {
	s := newMemoryStore(t)

	docs, err := Fetch(s, KindTrip, store.Fields{"owner": "doge"})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	for _, owner := range []string{"doge", "cate", "doge"} {
		doc := New(s, KindTrip)
		doc.Set("owner", owner)
		_, err := doc.Save()
		require.NoError(t, err)
	}

	docs, err = Fetch(s, KindTrip, store.Fields{"owner": "doge"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.True(t, doc.Persisted())
		assert.Equal(t, KindTrip, doc.Kind())
	}
}

func TestDocument_Delete(t *testing.T) {
	s := newMemoryStore(t)

	doc := New(s, KindTrip)
	doc.Set("name", "coast")
	_, err := doc.Save()
	require.NoError(t, err)
	id, _ := doc.Identifier()

	deleted, err := doc.Delete()
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, doc.Persisted())

	_, err = Load(s, KindTrip, id)
	assert.ErrorIs(t, err, ErrNotFound)

	name, err := doc.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "coast", name)
}

func TestDocument_MapIsACopy(t *testing.T) {
	doc := New(newMemoryStore(t), KindTrip)
	doc.Set("name", "coast")

	m := doc.Map()
	m["name"] = "changed"

	name, err := doc.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "coast", name)
	_, hasID := m[IDKey]
	assert.False(t, hasID)
}
