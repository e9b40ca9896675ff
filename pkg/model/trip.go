package model

import (
	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

const (
	nameField      = "name"
	waypointsField = "waypoints"
	ownerField     = "owner"
)

// Waypoint is one stop on a trip
type Waypoint struct {
	Name string `json:"name"`
	Lat  string `json:"lat"`
	Long string `json:"long"`
}

// Trip is a named list of waypoints belonging to one user. Like Credential
// it holds its Document and forwards the generic operations.
type Trip struct {
	doc *Document
}

func NewTrip(s store.DocumentStore, owner string) *Trip {
	t := &Trip{doc: New(s, KindTrip)}
	t.SetOwner(owner)
	t.SetWaypoints(nil)
	return t
}

func LoadTrip(s store.DocumentStore, id string) (*Trip, error) {
	doc, err := Load(s, KindTrip, id)
	if err != nil {
		return nil, err
	}
	return &Trip{doc: doc}, nil
}

// FetchTrips returns the trips matching query in insertion order
func FetchTrips(s store.DocumentStore, query store.Fields) ([]*Trip, error) {
	docs, err := Fetch(s, KindTrip, query)
	if err != nil {
		return nil, err
	}
	trips := make([]*Trip, 0, len(docs))
	for _, doc := range docs {
		trips = append(trips, &Trip{doc: doc})
	}
	return trips, nil
}

func (t *Trip) Identifier() (string, error) {
	return t.doc.Identifier()
}

func (t *Trip) Persisted() bool {
	return t.doc.Persisted()
}

func (t *Trip) Save() (bool, error) {
	return t.doc.Save()
}

func (t *Trip) Delete() (bool, error) {
	return t.doc.Delete()
}

// Map returns the trip fields with its identifier once saved
func (t *Trip) Map() map[string]interface{} {
	return t.doc.Map()
}

func (t *Trip) Name() string {
	name, _ := t.doc.GetString(nameField)
	return name
}

func (t *Trip) SetName(name string) {
	t.doc.Set(nameField, name)
}

func (t *Trip) Owner() string {
	owner, _ := t.doc.GetString(ownerField)
	return owner
}

func (t *Trip) SetOwner(owner string) {
	t.doc.Set(ownerField, owner)
}

// Waypoints decodes the stored waypoint list. Entries that are not objects
// are skipped.
func (t *Trip) Waypoints() []Waypoint {
	raw, err := t.doc.Get(waypointsField)
	if err != nil {
		return nil
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []Waypoint:
		return append([]Waypoint(nil), v...)
	default:
		return nil
	}

	out := make([]Waypoint, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, Waypoint{
			Name: stringOf(m[nameField]),
			Lat:  stringOf(m["lat"]),
			Long: stringOf(m["long"]),
		})
	}
	return out
}

// SetWaypoints stores waypoints in their mapping form so both store
// backends see the same value shape
func (t *Trip) SetWaypoints(waypoints []Waypoint) {
	items := make([]interface{}, 0, len(waypoints))
	for _, w := range waypoints {
		items = append(items, map[string]interface{}{
			nameField: w.Name,
			"lat":     w.Lat,
			"long":    w.Long,
		})
	}
	t.doc.Set(waypointsField, items)
}

func stringOf(v interface{}) string {
	s, _ := v.(string)
	return s
}
