package memory

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

// Ensure DocumentStore implements the store interfaces
var (
	_ store.DocumentStore = (*DocumentStore)(nil)
	_ store.HealthStore   = (*DocumentStore)(nil)
)

// document is the row kept in each bucket table. Body holds the JSON
// encoding of the fields so stored values never alias caller memory.
type document struct {
	ID   string
	Seq  string
	Body []byte
}

// DocumentStore implements store.DocumentStore on top of go-memdb
type DocumentStore struct {
	db  *memdb.MemDB
	seq uint64
}

// NewDocumentStore creates an in-memory store with one table per bucket
func NewDocumentStore(buckets ...string) (*DocumentStore, error) {
	schema := &memdb.DBSchema{Tables: make(map[string]*memdb.TableSchema, len(buckets))}
	for _, bucket := range buckets {
		schema.Tables[bucket] = &memdb.TableSchema{
			Name: bucket,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"seq": {
					Name:    "seq",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Seq"},
				},
			},
		}
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create memdb: %w", err)
	}
	return &DocumentStore{db: db}, nil
}

// FindOne retrieves a document by identifier
func (s *DocumentStore) FindOne(bucket, id string) (*store.Record, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(bucket, "id", id)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", bucket, err)
	}
	if raw == nil {
		return nil, store.ErrNotFound
	}
	return decode(raw.(*document))
}

// Find returns all documents matching every field of query, oldest first
func (s *DocumentStore) Find(bucket string, query store.Fields) ([]store.Record, error) {
	want, err := normalize(query)
	if err != nil {
		return nil, err
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(bucket, "seq")
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", bucket, err)
	}

	records := []store.Record{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		rec, err := decode(obj.(*document))
		if err != nil {
			return nil, err
		}
		if matches(rec.Fields, want) {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// Insert stores a new document under a fresh identifier
func (s *DocumentStore) Insert(bucket string, fields store.Fields) (string, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	s.seq++
	doc := &document{
		ID:   uuid.NewString(),
		Seq:  fmt.Sprintf("%020d", s.seq),
		Body: body,
	}
	if err := txn.Insert(bucket, doc); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", bucket, err)
	}
	txn.Commit()
	return doc.ID, nil
}

// Replace overwrites an existing document's fields
func (s *DocumentStore) Replace(bucket, id string, fields store.Fields) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(bucket, "id", id)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", bucket, err)
	}
	if raw == nil {
		return nil
	}

	existing := raw.(*document)
	if err := txn.Insert(bucket, &document{ID: existing.ID, Seq: existing.Seq, Body: body}); err != nil {
		return fmt.Errorf("failed to update %s: %w", bucket, err)
	}
	txn.Commit()
	return nil
}

// Delete removes a document by identifier
func (s *DocumentStore) Delete(bucket, id string) (bool, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(bucket, "id", id)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", bucket, err)
	}
	if raw == nil {
		return false, nil
	}
	if err := txn.Delete(bucket, raw); err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", bucket, err)
	}
	txn.Commit()
	return true, nil
}

// CheckConnectivity always succeeds for the in-process backend
func (s *DocumentStore) CheckConnectivity() error {
	return nil
}

func decode(doc *document) (*store.Record, error) {
	fields := store.Fields{}
	if err := json.Unmarshal(doc.Body, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
	}
	return &store.Record{ID: doc.ID, Fields: fields}, nil
}

// normalize round-trips query values through JSON so they compare equal to
// decoded document values (e.g. int 3 becomes float64 3)
func normalize(query store.Fields) (store.Fields, error) {
	if len(query) == 0 {
		return store.Fields{}, nil
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	out := store.Fields{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode query: %w", err)
	}
	return out, nil
}

func matches(fields, query store.Fields) bool {
	for key, want := range query {
		got, ok := fields[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
