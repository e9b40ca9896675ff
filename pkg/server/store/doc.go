// Package store provides storage abstractions for the tripkeeper server.
//
// This package defines interfaces for document operations, allowing the
// model layer and the server endpoints to be decoupled from the specific
// backend. Two backends implement them:
//
//   - store/gorm: PostgreSQL, one jsonb "documents" table partitioned by bucket
//   - store/memory: in-process go-memdb tables, one per bucket
//
// # Usage
//
//	docs := gormstore.NewDocumentStore(db)
//	rec, err := docs.FindOne("User", id)
//	if err != nil {
//	    if errors.Is(err, store.ErrNotFound) {
//	        // Handle not found
//	    }
//	}
package store
