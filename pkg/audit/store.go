package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Store copies audit events into the audit_events table. The acting user,
// client address, operation and target document each get a column.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Record is one audit_events row
type Record struct {
	OccurredAt time.Time
	MessageID  string
	Severity   Severity
	Username   string
	ClientIP   string
	Operation  string
	Kind       string
	DocumentID string
	Success    bool
	Message    string
	Details    map[string]map[string]string
}

// Open connects to the audit database at dsn
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an existing connection
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save inserts one row for event
func (s *Store) Save(ctx context.Context, event Event) error {
	if s.db == nil {
		return nil
	}

	rec := NewRecord(event, s.now())
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", rec.MessageID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(occurred_at, msgid, severity, username, client_ip, operation, kind, document_id, success, message, sdata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		rec.OccurredAt,
		rec.MessageID,
		int(rec.Severity),
		nullable(rec.Username),
		nullable(rec.ClientIP),
		rec.Operation,
		nullable(rec.Kind),
		nullable(rec.DocumentID),
		rec.Success,
		rec.Message,
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s event: %w", rec.MessageID, err)
	}
	return nil
}

// NewRecord flattens event into a row. The acting user is the
// authenticated one when present, otherwise the subject user.
func NewRecord(event Event, at time.Time) Record {
	sd := event.StructuredData()
	rec := Record{
		OccurredAt: at,
		MessageID:  event.MessageID(),
		Severity:   event.Severity(),
		Username:   sd[SDIDAuth]["user"],
		ClientIP:   sd[SDIDClient]["ip"],
		Operation:  sd[SDIDAction]["operation"],
		Kind:       sd[SDIDSubject]["kind"],
		DocumentID: sd[SDIDSubject]["id"],
		Success:    sd[SDIDAction]["result"] == result(true),
		Message:    event.Message(),
		Details:    sd,
	}
	if rec.Username == "" {
		rec.Username = sd[SDIDSubject]["user"]
	}
	if rec.Operation == "" {
		rec.Operation = rec.MessageID
	}
	return rec
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
