package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

func TestTrip(t *testing.T) {
	s := newMemoryStore(t)

	trip := NewTrip(s, "doge")
	trip.SetName("coast")
	trip.SetWaypoints([]Waypoint{
		{Name: "start", Lat: "37.77", Long: "-122.41"},
		{Name: "end", Lat: "36.60", Long: "-121.89"},
	})
	_, err := trip.Save()
	require.NoError(t, err)
	id, err := trip.Identifier()
	require.NoError(t, err)

	loaded, err := LoadTrip(s, id)
	require.NoError(t, err)
	assert.Equal(t, "coast", loaded.Name())
	assert.Equal(t, "doge", loaded.Owner())
	assert.Equal(t, []Waypoint{
		{Name: "start", Lat: "37.77", Long: "-122.41"},
		{Name: "end", Lat: "36.60", Long: "-121.89"},
	}, loaded.Waypoints())

	trips, err := FetchTrips(s, store.Fields{"owner": "doge"})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "coast", trips[0].Name())

	trips, err = FetchTrips(s, store.Fields{"owner": "cate"})
	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestLoadTrip_NotFound(t *testing.T) {
	_, err := LoadTrip(newMemoryStore(t), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrip_NewHasEmptyWaypoints(t *testing.T) {
	trip := NewTrip(newMemoryStore(t), "doge")
	assert.Empty(t, trip.Waypoints())
	assert.Equal(t, "", trip.Name())
}

func TestTrip_ForwardsDocumentOperations(t *testing.T) {
	s := newMemoryStore(t)

	trip := NewTrip(s, "doge")
	assert.False(t, trip.Persisted())
	_, err := trip.Identifier()
	assert.ErrorIs(t, err, ErrNotPersisted)

	saved, err := trip.Save()
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, trip.Persisted())

	id, err := trip.Identifier()
	require.NoError(t, err)
	m := trip.Map()
	assert.Equal(t, id, m[IDKey])
	assert.Equal(t, "doge", m["owner"])

	removed, err := trip.Delete()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, trip.Persisted())

	_, err = LoadTrip(s, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
