package gorm

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/tripkeeper/pkg/server/store"
)

// Ensure DocumentStore implements store.DocumentStore
var _ store.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements store.DocumentStore using GORM over a single
// PostgreSQL table partitioned by bucket:
//
//	documents(id text, bucket text, body jsonb, created_at, updated_at)
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

type documentRow struct {
	ID   string `gorm:"column:id"`
	Body []byte `gorm:"column:body"`
}

// FindOne retrieves a document by identifier
func (s *DocumentStore) FindOne(bucket, id string) (*store.Record, error) {
	var rows []documentRow
	err := s.db.Raw(
		`SELECT id, body FROM documents WHERE bucket = ? AND id = ?`,
		bucket, id,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s document: %w", bucket, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return decodeRow(rows[0])
}

// Find returns documents whose body holds every field of query with an
// equal value. Containment narrows rows through the gin index; each key is
// then compared whole, so arrays and nested objects never match partially.
func (s *DocumentStore) Find(bucket string, query store.Fields) ([]store.Record, error) {
	if query == nil {
		query = store.Fields{}
	}
	filter, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, body FROM documents WHERE bucket = ? AND body @> ?::jsonb`)
	args := []interface{}{bucket, string(filter)}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value, err := json.Marshal(query[k])
		if err != nil {
			return nil, fmt.Errorf("failed to encode query field %q: %w", k, err)
		}
		sb.WriteString(` AND body -> ? = ?::jsonb`)
		args = append(args, k, string(value))
	}
	sb.WriteString(` ORDER BY created_at, id`)

	var rows []documentRow
	err = s.db.Raw(sb.String(), args...).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s documents: %w", bucket, err)
	}

	records := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// Insert stores a new document under a fresh UUID
func (s *DocumentStore) Insert(bucket string, fields store.Fields) (string, error) {
	body, err := encodeFields(fields)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	err = s.db.Exec(
		`INSERT INTO documents (id, bucket, body) VALUES (?, ?, ?::jsonb)`,
		id, bucket, body,
	).Error
	if err != nil {
		return "", fmt.Errorf("failed to insert %s document: %w", bucket, err)
	}
	return id, nil
}

// Replace overwrites the body of an existing document
func (s *DocumentStore) Replace(bucket, id string, fields store.Fields) error {
	body, err := encodeFields(fields)
	if err != nil {
		return err
	}

	err = s.db.Exec(
		`UPDATE documents SET body = ?::jsonb, updated_at = now() WHERE bucket = ? AND id = ?`,
		body, bucket, id,
	).Error
	if err != nil {
		return fmt.Errorf("failed to update %s document: %w", bucket, err)
	}
	return nil
}

// Delete removes a document by identifier
func (s *DocumentStore) Delete(bucket, id string) (bool, error) {
	tx := s.db.Exec(`DELETE FROM documents WHERE bucket = ? AND id = ?`, bucket, id)
	if tx.Error != nil {
		return false, fmt.Errorf("failed to delete %s document: %w", bucket, tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func encodeFields(fields store.Fields) (string, error) {
	if fields == nil {
		fields = store.Fields{}
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(body), nil
}

func decodeRow(row documentRow) (*store.Record, error) {
	fields := store.Fields{}
	if err := json.Unmarshal(row.Body, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", row.ID, err)
	}
	return &store.Record{ID: row.ID, Fields: fields}, nil
}
