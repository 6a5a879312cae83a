package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/khata-ledger/internal/config"
)

const (
	// DefaultKVCollection holds the khata documents when MONGO_COLLECTION is unset
	DefaultKVCollection = "kv_store"
	// kvUpdatedAtIndex orders documents by last write for operators inspecting the ledger
	kvUpdatedAtIndex = "kv_updated_at"
)

// MongoDB owns the client and the collection the khata key-value documents live in
type MongoDB struct {
	logger       *slog.Logger
	client       *mongo.Client
	database     *mongo.Database
	kvCollection *mongo.Collection
}

// NewMongoDB connects, pings the primary and prepares the kv collection's indexes
func NewMongoDB(ctx context.Context, logger *slog.Logger, cfg *config.MongoDBConfig) (*MongoDB, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(setupCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)
	collection := database.Collection(kvCollectionName(cfg.Collection))
	if err := ensureKVIndexes(setupCtx, collection); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logger.Info("MongoDB kv collection ready", "database", cfg.Database, "collection", collection.Name())

	return &MongoDB{
		logger:       logger,
		client:       client,
		database:     database,
		kvCollection: collection,
	}, nil
}

func kvCollectionName(name string) string {
	if name == "" {
		return DefaultKVCollection
	}
	return name
}

// ensureKVIndexes is idempotent: createIndexes on an identical spec is a no-op
func ensureKVIndexes(ctx context.Context, collection *mongo.Collection) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: -1}},
		Options: options.Index().SetName(kvUpdatedAtIndex),
	}
	if _, err := collection.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collection.Name(), err)
	}
	return nil
}

func (m *MongoDB) Database() *mongo.Database {
	return m.database
}

// KVCollection is the collection the kv store reads and writes
func (m *MongoDB) KVCollection() *mongo.Collection {
	return m.kvCollection
}

func (m *MongoDB) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	m.logger.Info("Closed MongoDB connection")
	return nil
}
