package db

import (
	"context"
	"errors"
	"fmt"

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
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) *FirestoreStore {
	if client == nil {
		logger.Fatal("Firestore client is not initialized for FirestoreStore.")
	}
	return &FirestoreStore{client: client, logger: logger}
}

// toFirestore replaces the ServerTimestamp sentinel with the Firestore one, recursing into nested maps.
func toFirestore(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case serverTimestamp:
			out[k] = firestore.ServerTimestamp
		case map[string]interface{}:
			out[k] = toFirestore(val)
		default:
			out[k] = v
		}
	}
	return out
}

// Get retrieves a document from a Firestore collection.
func (s *FirestoreStore) Get(ctx context.Context, collection string, docID string) (map[string]interface{}, error) {
	doc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", collection, docID, ErrNotFound)
		}
		s.logger.Error("Error getting document", zap.String("collection", collection), zap.String("docID", docID), zap.Error(err))
		return nil, err
	}
	return doc.Data(), nil
}

// Create writes a document only if it does not exist yet.
func (s *FirestoreStore) Create(ctx context.Context, collection string, docID string, data map[string]interface{}) error {
	_, err := s.client.Collection(collection).Doc(docID).Create(ctx, toFirestore(data))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("%s/%s: %w", collection, docID, ErrAlreadyExists)
		}
		s.logger.Error("Error creating document", zap.String("collection", collection), zap.String("docID", docID), zap.Error(err))
		return err
	}
	return nil
}

// Add adds a new document to a Firestore collection.
// Returns the ID of the newly created document.
func (s *FirestoreStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	docRef, _, err := s.client.Collection(collection).Add(ctx, toFirestore(data))
	if err != nil {
		s.logger.Error("Error adding document", zap.String("collection", collection), zap.Error(err))
		return "", err
	}
	return docRef.ID, nil
}

// Update merges the given fields into an existing document.
func (s *FirestoreStore) Update(ctx context.Context, collection string, docID string, data map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(data))
	for path, value := range data {
		if _, ok := value.(serverTimestamp); ok {
			value = firestore.ServerTimestamp
		}
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	_, err := s.client.Collection(collection).Doc(docID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s/%s: %w", collection, docID, ErrNotFound)
		}
		s.logger.Error("Error updating document", zap.String("collection", collection), zap.String("docID", docID), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes a document from a Firestore collection.
func (s *FirestoreStore) Delete(ctx context.Context, collection string, docID string) error {
	_, err := s.client.Collection(collection).Doc(docID).Delete(ctx)
	if err != nil {
		s.logger.Error("Error deleting document", zap.String("collection", collection), zap.String("docID", docID), zap.Error(err))
		return err
	}
	return nil
}

// Query executes an equality/order query against a Firestore collection.
// Combined equality + orderBy queries need a composite index on the Firestore side.
func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := s.client.Collection(collection).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, "==", f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate collection '%s': %w", collection, err)
		}
		docs = append(docs, Document{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return docs, nil
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
