package docstore

import (
	"context"
	"errors"
)

// Collection names used by the application.
const (
	CollectionAdmins   = "admins"
	CollectionValets   = "valets"
	CollectionClockIns = "clock_ins"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable wraps infrastructure failures so callers can tell a
	// missing document from an unreachable store.
	ErrUnavailable = errors.New("document store unavailable")
)

// FilterOp enumerates supported query comparisons.
type FilterOp string

const (
	OpEqual        FilterOp = "=="
	OpGreaterEqual FilterOp = ">="
	OpLess         FilterOp = "<"
)

// Filter constrains a collection query on a single field.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// Ordering sorts query results on a single field.
type Ordering struct {
	Field string
	Desc  bool
}

// Document is a stored record: an id plus schemaless fields. Timestamps are
// stored as RFC3339 strings so range filters and ordering compare correctly
// as text.
type Document struct {
	ID     string
	Fields map[string]any
}

// Store is the generic document database consumed by the repositories.
// Writes are atomic per document; no cross-document transactions.
type Store interface {
	GetDocument(ctx context.Context, collection, id string) (*Document, error)
	SetDocument(ctx context.Context, collection, id string, fields map[string]any) error
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error
	DeleteDocument(ctx context.Context, collection, id string) error
	QueryCollection(ctx context.Context, collection string, filters []Filter, order *Ordering, limit int) ([]Document, error)
}
