package model

import (
	"fmt"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

// IDKey is the reserved field under which Map exposes the storage identifier
const IDKey = "_id"

// Document is a request-scoped, in-memory projection of one stored document.
// The store is the system of record; a Document owns its field mapping and
// shares it with nobody.
type Document struct {
	kind      Kind
	store     store.DocumentStore
	id        string
	persisted bool
	fields    store.Fields
}

// New returns an empty, unsaved document of the given kind
func New(s store.DocumentStore, kind Kind) *Document {
	return &Document{kind: kind, store: s, fields: store.Fields{}}
}

// FromRaw adopts already-fetched data as a persisted document without a
// round trip to the store
func FromRaw(s store.DocumentStore, kind Kind, raw store.Record) *Document {
	fields := raw.Fields
	if fields == nil {
		fields = store.Fields{}
	}
	delete(fields, IDKey)
	return &Document{kind: kind, store: s, id: raw.ID, persisted: true, fields: fields}
}

// Load fetches the document with the given identifier from the kind's bucket.
// Returns ErrNotFound if it does not exist.
func Load(s store.DocumentStore, kind Kind, id string) (*Document, error) {
	rec, err := s.FindOne(kind.Bucket(), id)
	if err != nil {
		return nil, err
	}
	return FromRaw(s, kind, *rec), nil
}

// Fetch returns every document of the kind whose fields equal all entries of
// query. No match yields an empty slice.
func Fetch(s store.DocumentStore, kind Kind, query store.Fields) ([]*Document, error) {
	recs, err := s.Find(kind.Bucket(), query)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, FromRaw(s, kind, rec))
	}
	return docs, nil
}

// Kind returns the document kind
func (d *Document) Kind() Kind {
	return d.kind
}

// Persisted reports whether the document corresponds to a stored record
func (d *Document) Persisted() bool {
	return d.persisted
}

// Get returns the value stored under key, or ErrMissingField
func (d *Document) Get(key string) (interface{}, error) {
	v, ok := d.fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return v, nil
}

// GetString returns the value under key when it is a string
func (d *Document) GetString(key string) (string, error) {
	v, err := d.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrMissingField, key)
	}
	return s, nil
}

// Set assigns value under key in memory only. The reserved identifier key
// is ignored.
func (d *Document) Set(key string, value interface{}) {
	if key == IDKey {
		return
	}
	d.fields[key] = value
}

// Identifier returns the storage identifier, or ErrNotPersisted
func (d *Document) Identifier() (string, error) {
	if !d.persisted {
		return "", ErrNotPersisted
	}
	return d.id, nil
}

// Save inserts the document if it was never stored and replaces the stored
// fields otherwise. The boolean reports whether the save was performed.
func (d *Document) Save() (bool, error) {
	bucket := d.kind.Bucket()
	if d.persisted {
		if err := d.store.Replace(bucket, d.id, d.fields); err != nil {
			return false, err
		}
		return true, nil
	}

	id, err := d.store.Insert(bucket, d.fields)
	if err != nil {
		return false, err
	}
	d.id = id
	d.persisted = true
	return true, nil
}

// Delete removes the stored record and reports whether one existed. The
// in-memory fields are kept so callers can still render them.
func (d *Document) Delete() (bool, error) {
	if !d.persisted {
		return false, ErrNotPersisted
	}
	deleted, err := d.store.Delete(d.kind.Bucket(), d.id)
	if err != nil {
		return false, err
	}
	d.persisted = false
	d.id = ""
	return deleted, nil
}

// Map returns a copy of the fields with the identifier under IDKey
func (d *Document) Map() map[string]interface{} {
	out := map[string]interface{}(d.fields.Clone())
	if d.persisted {
		out[IDKey] = d.id
	}
	return out
}
