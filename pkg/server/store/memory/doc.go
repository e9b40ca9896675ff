// Package memory provides an in-process implementation of the store
// interfaces backed by hashicorp/go-memdb.
//
// Every bucket is a memdb table declared when the store is created, so the
// set of buckets is fixed for the lifetime of the store. Writes are
// serialized by memdb's single-writer transactions.
package memory
