package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements DocumentStore on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) (*FirestoreStore, error) {
	if client == nil {
		return nil, errors.New("firestore client is not initialized")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreStore{client: client, logger: logger}, nil
}

// Create adds a document with an auto-generated ID.
func (s *FirestoreStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	docRef := s.client.Collection(collection).NewDoc()
	if _, err := docRef.Create(ctx, toFirestoreValues(fields)); err != nil {
		return "", fmt.Errorf("failed to create document in '%s': %w", collection, err)
	}
	return docRef.ID, nil
}

// CreateWithKey adds a document under key. It fails if the key already exists.
func (s *FirestoreStore) CreateWithKey(ctx context.Context, collection, key string, fields Fields) error {
	if key == "" {
		return errors.New("key cannot be empty for CreateWithKey")
	}
	_, err := s.client.Collection(collection).Doc(key).Create(ctx, toFirestoreValues(fields))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("document '%s/%s': %w", collection, key, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create document '%s/%s': %w", collection, key, err)
	}
	return nil
}

// Get retrieves one document by key.
func (s *FirestoreStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	if key == "" {
		return nil, fmt.Errorf("document '%s/': %w", collection, ErrNotFound)
	}
	snap, err := s.client.Collection(collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("document '%s/%s': %w", collection, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document '%s/%s': %w", collection, key, err)
	}
	return &Document{Key: snap.Ref.ID, Data: snap.Data()}, nil
}

// Query runs equality filters against a collection.
func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]*Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	// Ordering combined with equality filters on other fields needs a composite index, so
	// filtered queries are sorted after the fetch.
	orderInStore := q.OrderBy != "" && len(q.Filters) == 0
	if orderInStore {
		dir := firestore.Asc
		if q.Descending {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 && (orderInStore || q.OrderBy == "") {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []*Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query '%s': %w", collection, err)
		}
		docs = append(docs, &Document{Key: snap.Ref.ID, Data: snap.Data()})
	}

	if q.OrderBy != "" && !orderInStore {
		SortDocuments(docs, q.OrderBy, q.Descending)
		if q.Limit > 0 && len(docs) > q.Limit {
			docs = docs[:q.Limit]
		}
	}
	return docs, nil
}

// Update applies a partial update. Firestore's Update fails with NotFound when the document
// is missing, which is the behavior DocumentStore promises.
func (s *FirestoreStore) Update(ctx context.Context, collection, key string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: toFirestoreValue(value)})
	}
	// Stable order keeps writes reproducible in logs.
	sort.Slice(updates, func(i, j int) bool { return updates[i].Path < updates[j].Path })

	if _, err := s.client.Collection(collection).Doc(key).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("document '%s/%s': %w", collection, key, ErrNotFound)
		}
		return fmt.Errorf("failed to update document '%s/%s': %w", collection, key, err)
	}
	return nil
}

// Delete removes a document, failing with ErrNotFound if it does not exist.
func (s *FirestoreStore) Delete(ctx context.Context, collection, key string) error {
	_, err := s.client.Collection(collection).Doc(key).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("document '%s/%s': %w", collection, key, ErrNotFound)
		}
		return fmt.Errorf("failed to delete document '%s/%s': %w", collection, key, err)
	}
	return nil
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func toFirestoreValues(fields Fields) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if v == DeleteField {
			continue
		}
		out[k] = toFirestoreValue(v)
	}
	return out
}

func toFirestoreValue(v interface{}) interface{} {
	switch v {
	case ServerTimestamp:
		return firestore.ServerTimestamp
	case DeleteField:
		return firestore.Delete
	}
	return v
}
