package khata

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ContactLookup resolves whether a contact exists
type ContactLookup interface {
	Exists(id uuid.UUID) bool
}

// EntryStore is the append-only collection of ledger entries, kept per contact in
// insertion order. Entries are never modified or removed.
type EntryStore struct {
	mu       sync.RWMutex
	contacts ContactLookup
	entries  map[uuid.UUID][]ledger.Entry
	ids      map[uuid.UUID]struct{}
}

// NewEntryStore creates an empty store whose appends are checked against contacts
func NewEntryStore(contacts ContactLookup) *EntryStore {
	return &EntryStore{
		contacts: contacts,
		entries:  make(map[uuid.UUID][]ledger.Entry),
		ids:      make(map[uuid.UUID]struct{}),
	}
}

// Append creates a new entry for the contact and appends it
func (s *EntryStore) Append(contactID uuid.UUID, entryType ledger.EntryType, amount decimal.Decimal, date time.Time, description string) (ledger.Entry, error) {
	if !amount.IsPositive() {
		return ledger.Entry{}, shared.ValidationError{Field: "amount", Code: shared.CodeInvalidAmount}
	}
	if !s.contacts.Exists(contactID) {
		return ledger.Entry{}, shared.NotFoundError{Resource: "contact", ID: contactID.String()}
	}

	entry, err := ledger.NewEntry(contactID, entryType, amount, date, description)
	if err != nil {
		return ledger.Entry{}, err
	}
	if err := s.Commit(entry); err != nil {
		return ledger.Entry{}, err
	}
	return entry, nil
}

// Commit appends an already built entry. The entry's date does not affect its position.
func (s *EntryStore) Commit(entry ledger.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if !s.contacts.Exists(entry.ContactID) {
		return shared.NotFoundError{Resource: "contact", ID: entry.ContactID.String()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[entry.ID]; dup {
		return ErrDuplicateEntry{EntryID: entry.ID}
	}
	s.ids[entry.ID] = struct{}{}
	s.entries[entry.ContactID] = append(s.entries[entry.ContactID], entry)
	return nil
}

// EntriesFor returns a copy of the contact's entries in insertion order
func (s *EntryStore) EntriesFor(contactID uuid.UUID) ([]ledger.Entry, error) {
	if !s.contacts.Exists(contactID) {
		return nil, shared.NotFoundError{Resource: "contact", ID: contactID.String()}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.entries[contactID]
	entries := make([]ledger.Entry, len(current))
	copy(entries, current)
	return entries, nil
}

// EntriesByDate is the chronological read model of the contact's entries
func (s *EntryStore) EntriesByDate(contactID uuid.UUID) ([]ledger.Entry, error) {
	entries, err := s.EntriesFor(contactID)
	if err != nil {
		return nil, err
	}
	return ledger.SortByDate(entries), nil
}

// FindByIdempotencyKey returns the contact's entry recorded under key, if any
func (s *EntryStore) FindByIdempotencyKey(contactID uuid.UUID, key string) (ledger.Entry, bool) {
	if key == "" {
		return ledger.Entry{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries[contactID] {
		if e.IdempotencyKey == key {
			return e, true
		}
	}
	return ledger.Entry{}, false
}
