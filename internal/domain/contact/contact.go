// Package contact models the counterparties tracked by the khata.
package contact

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Contact represents a customer or counterparty with a running balance.
// Balance is a cached projection of the contact's ledger entries.
type Contact struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewContact creates a contact with a zero balance.
// The name is trimmed and must not be empty; the phone is optional but must be 10 digits when set.
func NewContact(name, phone string) (*Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ValidationError{Field: "name", Code: shared.CodeEmptyName}
	}
	phone = strings.TrimSpace(phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		return nil, shared.ValidationError{Field: "phone", Code: shared.CodeInvalidPhone}
	}

	now := time.Now().UTC()
	return &Contact{
		ID:        uuid.New(),
		Name:      name,
		Phone:     phone,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Matches reports whether the contact's name (case-insensitive) or phone contains query.
// An empty query matches every contact.
func (c *Contact) Matches(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
		return true
	}
	return c.Phone != "" && strings.Contains(c.Phone, query)
}

// Clone returns a copy that can be modified without affecting c
func (c *Contact) Clone() *Contact {
	clone := *c
	return &clone
}
