// Package mongo provides the MongoDB implementation of kv.Store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khata-ledger/internal/domain/kv"
)

// kvDocument is the stored shape: the key is the document id and the JSON value is kept verbatim
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KVStore implements kv.Store for MongoDB
type KVStore struct {
	collection *mongo.Collection
	logger     *slog.Logger
	now        func() time.Time
}

var _ kv.Store = (*KVStore)(nil)

// NewKVStore creates a store on a collection whose indexes the caller has prepared
func NewKVStore(logger *slog.Logger, collection *mongo.Collection) *KVStore {
	return &KVStore{
		collection: collection,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the value stored under key, or ok=false when no document exists
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc kvDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		s.logger.Error("Failed to get key", "key", key, "error", err)
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return []byte(doc.Value), true, nil
}

// Set replaces the document for key, inserting it when missing
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	doc := kvDocument{
		Key:       key,
		Value:     string(value),
		UpdatedAt: s.now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		s.logger.Error("Failed to set key", "key", key, "error", err)
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}

// Remove deletes the document for key
func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		s.logger.Error("Failed to remove key", "key", key, "error", err)
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}
	return nil
}
