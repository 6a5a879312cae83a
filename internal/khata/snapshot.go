package khata

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/kv"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultKeyPrefix namespaces every key the khata writes
const DefaultKeyPrefix = "khata"

// contactDocument is the persisted shape of one contact with its embedded entries
type contactDocument struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Phone     string              `json:"phone,omitempty"`
	Balance   decimal.NullDecimal `json:"balance"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Entries   []ledger.Entry      `json:"entries"`
}

func newContactDocument(c *contact.Contact, entries []ledger.Entry) *contactDocument {
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return &contactDocument{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Balance:   decimal.NewNullDecimal(c.Balance),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Entries:   entries,
	}
}

// snapshotRepository reads and writes khata documents through a kv.Store.
// Layout: <prefix>:contacts holds the id index, <prefix>:contact:<id> one document per contact.
type snapshotRepository struct {
	store  kv.Store
	prefix string
	logger *slog.Logger
}

func newSnapshotRepository(store kv.Store, prefix string, logger *slog.Logger) *snapshotRepository {
	return &snapshotRepository{store: store, prefix: prefix, logger: logger}
}

func (r *snapshotRepository) indexKey() string {
	return r.prefix + ":contacts"
}

func (r *snapshotRepository) contactKey(id uuid.UUID) string {
	return r.prefix + ":contact:" + id.String()
}

func (r *snapshotRepository) loadIndex(ctx context.Context) ([]uuid.UUID, error) {
	key := r.indexKey()
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, shared.PersistenceError{Op: "get", Key: key, Err: err}
	}
	if !found {
		return nil, nil
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, ErrCorruptSnapshot{Key: key, Reason: err.Error()}
	}
	return ids, nil
}

func (r *snapshotRepository) saveIndex(ctx context.Context, ids []uuid.UUID) error {
	return r.put(ctx, r.indexKey(), ids)
}

func (r *snapshotRepository) loadContact(ctx context.Context, id uuid.UUID) (*contactDocument, error) {
	key := r.contactKey(id)
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, shared.PersistenceError{Op: "get", Key: key, Err: err}
	}
	if !found {
		return nil, ErrCorruptSnapshot{Key: key, Reason: "indexed contact document is missing"}
	}

	var doc contactDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrCorruptSnapshot{Key: key, Reason: err.Error()}
	}
	if doc.ID != id {
		return nil, ErrCorruptSnapshot{Key: key, Reason: "document id does not match its key"}
	}
	return &doc, nil
}

func (r *snapshotRepository) saveContact(ctx context.Context, doc *contactDocument) error {
	return r.put(ctx, r.contactKey(doc.ID), doc)
}

func (r *snapshotRepository) removeContact(ctx context.Context, id uuid.UUID) error {
	key := r.contactKey(id)
	if err := r.store.Remove(ctx, key); err != nil {
		return shared.PersistenceError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (r *snapshotRepository) put(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return shared.PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		r.logger.Error("failed to write snapshot", "key", key, "error", err)
		return shared.PersistenceError{Op: "set", Key: key, Err: err}
	}
	return nil
}
