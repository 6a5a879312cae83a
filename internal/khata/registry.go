package khata

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Registry owns the authoritative mapping of contact id to contact, including the
// cached balance. Callers always receive copies.
type Registry struct {
	mu       sync.RWMutex
	contacts map[uuid.UUID]*contact.Contact
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{contacts: make(map[uuid.UUID]*contact.Contact)}
}

// Add inserts a contact. Ids must be unique.
func (r *Registry) Add(c *contact.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contacts[c.ID]; exists {
		return fmt.Errorf("contact %s already registered", c.ID)
	}
	r.contacts[c.ID] = c.Clone()
	return nil
}

// Get returns a copy of the contact or a NotFoundError
func (r *Registry) Get(id uuid.UUID) (*contact.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contacts[id]
	if !ok {
		return nil, shared.NotFoundError{Resource: "contact", ID: id.String()}
	}
	return c.Clone(), nil
}

// Exists reports whether id is registered
func (r *Registry) Exists(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.contacts[id]
	return ok
}

// Len returns the number of registered contacts
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contacts)
}

// List returns every contact, sorted by name and then id for a stable order
func (r *Registry) List() []*contact.Contact {
	return r.Search("")
}

// Search returns the contacts whose name or phone contains query
func (r *Registry) Search(query string) []*contact.Contact {
	r.mu.RLock()
	result := make([]*contact.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		if c.Matches(query) {
			result = append(result, c.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)
		if a != b {
			return a < b
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

// ApplyEntry adds the entry's signed amount to the cached balance. entries must be the
// contact's full entry sequence including entry. If the incremental result differs from
// the projection of entries the projection wins and ErrBalanceDiverged is returned.
func (r *Registry) ApplyEntry(id uuid.UUID, entry ledger.Entry, entries []ledger.Entry) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[id]
	if !ok {
		return decimal.Zero, shared.NotFoundError{Resource: "contact", ID: id.String()}
	}

	cached := c.Balance.Add(entry.Signed())
	projected := ledger.Project(entries).Balance
	c.UpdatedAt = entry.CreatedAt

	if !cached.Equal(projected) {
		c.Balance = projected
		return projected, ErrBalanceDiverged{ContactID: id, Cached: cached, Projected: projected}
	}
	c.Balance = cached
	return cached, nil
}
