package db

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document or blob does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned by CreateWithKey when the key is taken.
	ErrAlreadyExists = errors.New("document already exists")
)

// Collection names used by the services.
const (
	PlantsCollection     = "plants"
	UsersCollection      = "users"
	AttendanceCollection = "attendance"
)

// Fields is a document body or a partial update keyed by field name.
type Fields map[string]interface{}

type sentinel int

const (
	// ServerTimestamp, used as a field value, is replaced by the store's clock at write time.
	ServerTimestamp sentinel = iota + 1
	// DeleteField, used as a value in Update, removes the field from the document.
	DeleteField
)

// Document is a stored document and its key.
type Document struct {
	Key  string
	Data map[string]interface{}
}

// Filter is an equality predicate on one field.
type Filter struct {
	Field string
	Value interface{}
}

// Query selects documents of a collection. All filters must match. OrderBy names a field to
// sort by; Limit <= 0 means no limit.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Where is shorthand for a Query of equality filters given as field, value pairs.
func Where(fieldValues ...interface{}) Query {
	var q Query
	for i := 0; i+1 < len(fieldValues); i += 2 {
		field, _ := fieldValues[i].(string)
		q.Filters = append(q.Filters, Filter{Field: field, Value: fieldValues[i+1]})
	}
	return q
}

// DocumentStore is the document database the services persist to.
type DocumentStore interface {
	// Create adds a document with a store-assigned key and returns the key.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// CreateWithKey adds a document under a caller-chosen key, or returns ErrAlreadyExists.
	CreateWithKey(ctx context.Context, collection, key string, fields Fields) error
	// Get returns ErrNotFound when the key does not exist.
	Get(ctx context.Context, collection, key string) (*Document, error)
	Query(ctx context.Context, collection string, q Query) ([]*Document, error)
	// Update merges fields into an existing document and returns ErrNotFound if there is none.
	Update(ctx context.Context, collection, key string, fields Fields) error
	// Delete returns ErrNotFound when the key does not exist.
	Delete(ctx context.Context, collection, key string) error
}

// BlobStore holds binary objects such as plant photos.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// URL returns a retrieval URL for key, or ErrNotFound.
	URL(ctx context.Context, key string) (string, error)
	// Delete removes key. Deleting a key that does not exist is not an error.
	Delete(ctx context.Context, key string) error
}
