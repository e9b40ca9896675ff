package store

import "errors"

// ErrNotFound is returned when no document matches an identifier
var ErrNotFound = errors.New("document not found")

// Fields is the field mapping of a stored document. Values are JSON-shaped:
// string, float64, bool, nil, []interface{} or map[string]interface{}.
type Fields map[string]interface{}

// Record is a stored document together with its store-assigned identifier
type Record struct {
	ID     string
	Fields Fields
}

// DocumentStore abstracts document storage operations.
//
// Documents live in buckets, one bucket per entity kind. The store assigns
// identifiers on insert; they are unique within a bucket and never change.
type DocumentStore interface {
	// FindOne retrieves the document with the given identifier.
	// Returns ErrNotFound if the bucket holds no such document.
	FindOne(bucket, id string) (*Record, error)

	// Find returns every document whose fields equal all entries of query,
	// in insertion order. An empty query matches every document.
	Find(bucket string, query Fields) ([]Record, error)

	// Insert stores a new document and returns its identifier.
	Insert(bucket string, fields Fields) (string, error)

	// Replace overwrites the fields of an existing document.
	// Replacing an identifier that does not exist is a no-op.
	Replace(bucket, id string, fields Fields) error

	// Delete removes a document and reports whether it existed.
	Delete(bucket, id string) (bool, error)
}

// Clone returns a deep copy of the field mapping
func (f Fields) Clone() Fields {
	if f == nil {
		return Fields{}
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(Fields(t).Clone())
	case Fields:
		return t.Clone()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
