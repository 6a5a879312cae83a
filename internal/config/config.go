// Package config provides configuration structures and validation for the khata services.
// Values come from an optional .env file and environment variables layered over defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Storage drivers selectable through STORAGE_DRIVER
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
)

// Config holds the complete application configuration. Storage-specific and Kafka
// sections are only validated when they are in use.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Ledger      LedgerConfig
	Storage     StorageConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	SQLite      SQLiteConfig
	Kafka       KafkaConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or text
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// LedgerConfig contains settings of the khata engine itself
type LedgerConfig struct {
	Currency  string // ISO code used to display amounts
	KeyPrefix string // Namespace of every persisted key
}

// StorageConfig selects the key-value backend
type StorageConfig struct {
	Driver string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Minimum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Collection      string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// SQLiteConfig contains SQLite configuration
type SQLiteConfig struct {
	Path           string // Database file
	MigrationsPath string
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	RecordTopic       string // Incoming record requests
	EventsTopic       string // Outgoing entry-recorded events
	NumPartitions     int    // Number of partitions for topics
	ReplicationFactor int    // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// BrokerList splits the comma-separated broker setting
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// validate checks every configuration value and reports all problems at once
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Logging config
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		validationErrors = append(validationErrors, "LOG_FORMAT must be json or text")
	}

	// Validate Ledger config
	if len(c.Ledger.Currency) != 3 {
		validationErrors = append(validationErrors, "LEDGER_CURRENCY must be a 3-letter code")
	}
	if c.Ledger.KeyPrefix == "" {
		validationErrors = append(validationErrors, "LEDGER_KEY_PREFIX is required")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		validationErrors = append(validationErrors, c.Postgres.validate()...)
	case DriverMongo:
		validationErrors = append(validationErrors, c.MongoDB.validate()...)
	case DriverSQLite:
		validationErrors = append(validationErrors, c.SQLite.validate()...)
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("STORAGE_DRIVER must be one of %s, %s, %s, %s", DriverMemory, DriverPostgres, DriverMongo, DriverSQLite))
	}

	if c.Kafka.Enabled {
		validationErrors = append(validationErrors, c.Kafka.validate()...)
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

func (p PostgresConfig) validate() []string {
	var errs []string
	if p.URL == "" {
		errs = append(errs, "POSTGRES_URL is required")
	}
	if p.MaxConns <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if p.MinConns <= 0 {
		errs = append(errs, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if p.ConnMaxLifetime <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if p.ConnMaxIdleTime <= 0 {
		errs = append(errs, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	if p.MigrationsPath == "" {
		errs = append(errs, "POSTGRES_MIGRATIONS_PATH is required")
	}
	return errs
}

func (m MongoDBConfig) validate() []string {
	var errs []string
	if m.URI == "" {
		errs = append(errs, "MONGO_URI is required")
	}
	if m.Database == "" {
		errs = append(errs, "MONGO_DATABASE is required")
	}
	if m.Collection == "" {
		errs = append(errs, "MONGO_COLLECTION is required")
	}
	if m.Timeout <= 0 {
		errs = append(errs, "MONGO_TIMEOUT must be greater than 0")
	}
	if m.MaxPoolSize <= 0 {
		errs = append(errs, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if m.MinPoolSize <= 0 {
		errs = append(errs, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if m.MaxConnIdleTime <= 0 {
		errs = append(errs, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}
	return errs
}

func (s SQLiteConfig) validate() []string {
	var errs []string
	if s.Path == "" {
		errs = append(errs, "SQLITE_PATH is required")
	}
	if s.MigrationsPath == "" {
		errs = append(errs, "SQLITE_MIGRATIONS_PATH is required")
	}
	return errs
}

func (k KafkaConfig) validate() []string {
	var errs []string
	if len(k.BrokerList()) == 0 {
		errs = append(errs, "KAFKA_BROKERS is required")
	}
	if k.RecordTopic == "" {
		errs = append(errs, "KAFKA_RECORD_TOPIC is required")
	}
	if k.EventsTopic == "" {
		errs = append(errs, "KAFKA_EVENTS_TOPIC is required")
	}
	if k.ConsumerGroup == "" {
		errs = append(errs, "KAFKA_CONSUMER_GROUP is required")
	}
	if k.MinBytes <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if k.MaxBytes <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if k.MaxWait <= 0 {
		errs = append(errs, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if k.DLQTopic == "" {
		errs = append(errs, "KAFKA_DLQ_TOPIC is required")
	}
	return errs
}
