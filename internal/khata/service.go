// Package khata is the contact-ledger engine: it records credits and payments against
// contacts, keeps each contact's balance consistent with its entries and persists every
// mutation through a key-value store.
package khata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/kv"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventPublisher receives notifications about committed entries
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// EntryOrder selects how entries are listed
type EntryOrder string

const (
	OrderInsertion EntryOrder = "insertion"
	OrderDate      EntryOrder = "date"
)

// EntryQuery filters and orders a contact's entries
type EntryQuery struct {
	Order EntryOrder
	From  time.Time
	To    time.Time
}

// VerifyResult is the outcome of rebuilding a contact's balance from its entries
type VerifyResult struct {
	ContactID  uuid.UUID       `json:"contact_id"`
	Cached     decimal.Decimal `json:"cached"`
	Recomputed decimal.Decimal `json:"recomputed"`
	Consistent bool            `json:"consistent"`
}

// Option configures a Service
type Option func(*Service)

// WithEventPublisher sets the publisher notified after each committed entry
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCurrency sets the display currency
func WithCurrency(code string) Option {
	return func(s *Service) {
		if code != "" {
			s.currency = strings.ToUpper(code)
		}
	}
}

// WithKeyPrefix sets the namespace used for persisted keys
func WithKeyPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides the time source used for default entry dates
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service orchestrates the contact registry, the entry store and persistence.
// Mutations of one contact are serialized; different contacts proceed independently.
type Service struct {
	logger    *slog.Logger
	store     kv.Store
	publisher EventPublisher
	currency  string
	prefix    string
	now       func() time.Time

	snapshots *snapshotRepository
	registry  *Registry
	entries   *EntryStore

	indexMu sync.Mutex
	index   []uuid.UUID

	lockMu sync.Mutex
	locks  map[uuid.UUID]*sync.Mutex
}

// NewService creates an empty service backed by store. Call Load to hydrate it.
func NewService(logger *slog.Logger, store kv.Store, opts ...Option) *Service {
	s := &Service{
		logger:   logger,
		store:    store,
		currency: ledger.DefaultCurrency,
		prefix:   DefaultKeyPrefix,
		now:      time.Now,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.snapshots = newSnapshotRepository(store, s.prefix, logger)
	s.registry = NewRegistry()
	s.entries = NewEntryStore(s.registry)
	return s
}

// Currency returns the display currency code
func (s *Service) Currency() string {
	return s.currency
}

// Load replaces the in-memory state with the persisted one. Cached balances that are
// missing or stale are recomputed from the loaded entries. Load must finish before the
// service is shared between goroutines.
func (s *Service) Load(ctx context.Context) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	ids, err := s.snapshots.loadIndex(ctx)
	if err != nil {
		return err
	}

	registry := NewRegistry()
	entries := NewEntryStore(registry)

	for _, id := range ids {
		doc, err := s.snapshots.loadContact(ctx, id)
		if err != nil {
			return err
		}

		c, err := s.reconcile(doc)
		if err != nil {
			return err
		}
		if err := registry.Add(c); err != nil {
			return ErrCorruptSnapshot{Key: s.snapshots.indexKey(), Reason: err.Error()}
		}
		for _, e := range doc.Entries {
			if err := entries.Commit(e); err != nil {
				return ErrCorruptSnapshot{Key: s.snapshots.contactKey(id), Reason: err.Error()}
			}
		}
	}

	s.registry = registry
	s.entries = entries
	s.index = ids

	s.logger.Info("khata loaded", "contacts", len(ids))
	return nil
}

// reconcile validates a loaded document and returns its contact with a balance that
// matches the projection of its entries
func (s *Service) reconcile(doc *contactDocument) (*contact.Contact, error) {
	key := s.snapshots.contactKey(doc.ID)
	if strings.TrimSpace(doc.Name) == "" {
		return nil, ErrCorruptSnapshot{Key: key, Reason: "contact name is empty"}
	}
	for _, e := range doc.Entries {
		if e.ContactID != doc.ID {
			return nil, ErrCorruptSnapshot{Key: key, Reason: fmt.Sprintf("entry %s belongs to contact %s", e.ID, e.ContactID)}
		}
		if err := e.Validate(); err != nil {
			return nil, ErrCorruptSnapshot{Key: key, Reason: fmt.Sprintf("entry %s: %v", e.ID, err)}
		}
	}

	projected := ledger.Project(doc.Entries).Balance
	switch {
	case !doc.Balance.Valid:
		s.logger.Warn("cached balance missing, recomputed from entries", "contact_id", doc.ID, "balance", projected)
	case !doc.Balance.Decimal.Equal(projected):
		s.logger.Warn("cached balance stale, recomputed from entries",
			"contact_id", doc.ID, "cached", doc.Balance.Decimal, "balance", projected)
	}

	return &contact.Contact{
		ID:        doc.ID,
		Name:      doc.Name,
		Phone:     doc.Phone,
		Balance:   projected,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// CreateContact registers a new contact with a zero balance. The contact becomes
// visible only after both its document and the index have been persisted.
func (s *Service) CreateContact(ctx context.Context, name, phone string) (*contact.Contact, error) {
	c, err := contact.NewContact(name, phone)
	if err != nil {
		return nil, err
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	if err := s.snapshots.saveContact(ctx, newContactDocument(c, nil)); err != nil {
		return nil, err
	}

	index := make([]uuid.UUID, len(s.index), len(s.index)+1)
	copy(index, s.index)
	index = append(index, c.ID)
	if err := s.snapshots.saveIndex(ctx, index); err != nil {
		if rmErr := s.snapshots.removeContact(ctx, c.ID); rmErr != nil {
			s.logger.Warn("failed to remove unindexed contact document", "contact_id", c.ID, "error", rmErr)
		}
		return nil, err
	}

	if err := s.registry.Add(c); err != nil {
		return nil, err
	}
	s.index = index

	s.logger.Info("contact created", "contact_id", c.ID)
	return c.Clone(), nil
}

// GetContact returns the contact identified by id
func (s *Service) GetContact(_ context.Context, id string) (*contact.Contact, error) {
	contactID, err := parseContactID(id)
	if err != nil {
		return nil, err
	}
	return s.registry.Get(contactID)
}

// ListContacts returns the contacts matching query, or all of them when query is empty
func (s *Service) ListContacts(_ context.Context, query string) []*contact.Contact {
	return s.registry.Search(query)
}

// Entries lists a contact's entries, in insertion order unless the query asks for date order
func (s *Service) Entries(_ context.Context, id string, q EntryQuery) ([]ledger.Entry, error) {
	contactID, err := parseContactID(id)
	if err != nil {
		return nil, err
	}

	var entries []ledger.Entry
	switch q.Order {
	case OrderDate:
		entries, err = s.entries.EntriesByDate(contactID)
	case OrderInsertion, "":
		entries, err = s.entries.EntriesFor(contactID)
	default:
		return nil, shared.ValidationError{Field: "order", Code: "invalid_order"}
	}
	if err != nil {
		return nil, err
	}
	return ledger.Between(entries, q.From, q.To), nil
}

// Verify rebuilds the contact's balance from its entries and compares it to the cache
func (s *Service) Verify(_ context.Context, id string) (*VerifyResult, error) {
	contactID, err := parseContactID(id)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(contactID)
	lock.Lock()
	defer lock.Unlock()

	return s.verify(contactID)
}

// VerifyAll runs Verify for every contact
func (s *Service) VerifyAll(ctx context.Context) ([]VerifyResult, error) {
	contacts := s.registry.List()
	results := make([]VerifyResult, 0, len(contacts))
	for _, c := range contacts {
		r, err := s.Verify(ctx, c.ID.String())
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

func (s *Service) verify(contactID uuid.UUID) (*VerifyResult, error) {
	c, err := s.registry.Get(contactID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.EntriesFor(contactID)
	if err != nil {
		return nil, err
	}

	recomputed := ledger.Project(entries).Balance
	return &VerifyResult{
		ContactID:  contactID,
		Cached:     c.Balance,
		Recomputed: recomputed,
		Consistent: recomputed.Equal(c.Balance),
	}, nil
}

// lockFor returns the mutex serializing mutations of one contact
func (s *Service) lockFor(contactID uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if _, exists := s.locks[contactID]; !exists {
		s.locks[contactID] = &sync.Mutex{}
	}
	return s.locks[contactID]
}

func parseContactID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, shared.NotFoundError{Resource: "contact", ID: raw}
	}
	return id, nil
}

// IsClientError reports whether err is caused by the caller's input rather than the system
func IsClientError(err error) bool {
	return errors.Is(err, shared.ValidationError{}) || errors.Is(err, shared.NotFoundError{})
}
