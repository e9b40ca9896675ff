// Package model contains the document types stored by tripkeeper.
//
// Every document has a Kind that fixes the storage bucket it lives in. A
// Document is created empty (New), loaded by identifier (Load) or adopted from
// already-fetched data (FromRaw); Save dispatches to an insert or a full
// replacement depending on whether it was persisted before.
//
// Credential and Trip wrap a Document and add named accessors. Credential
// also owns password hashing and the username uniqueness check.
package model
