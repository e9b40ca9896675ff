// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Documents of every bucket share one PostgreSQL table; the body column is
// jsonb. Field-equality queries pair a containment (@>) prefilter with an
// exact per-key comparison (body -> key = value). The schema is created by the migrations in db/migrations.
package gorm
