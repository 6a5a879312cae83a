// Package ledger defines the ledger entry model and the pure balance projection
// that folds a contact's entries into a signed balance and a display label.
package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used on every external surface
const DateLayout = time.DateOnly

// EntryType defines the kind of ledger event
type EntryType string

const (
	// EntryTypeCredit increases what the contact owes the store
	EntryTypeCredit EntryType = "credit"
	// EntryTypePayment decreases what the contact owes the store
	EntryTypePayment EntryType = "payment"
)

// IsValid reports whether t is one of the supported entry types
func (t EntryType) IsValid() bool {
	return t == EntryTypeCredit || t == EntryTypePayment
}

// Sign is +1 for a credit and -1 for a payment
func (t EntryType) Sign() int64 {
	if t == EntryTypePayment {
		return -1
	}
	return 1
}

// ParseEntryType converts user input into an EntryType
func ParseEntryType(raw string) (EntryType, error) {
	t := EntryType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", shared.ValidationError{Field: "type", Code: shared.CodeInvalidType}
	}
	return t, nil
}

// Entry represents one immutable credit or payment event against a contact.
// The amount is always positive; the sign is carried by Type.
type Entry struct {
	ID             uuid.UUID       `json:"id"`
	ContactID      uuid.UUID       `json:"contact_id"`
	Type           EntryType       `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewEntry validates the input and creates an entry with a fresh id
func NewEntry(contactID uuid.UUID, entryType EntryType, amount decimal.Decimal, date time.Time, description string) (Entry, error) {
	if !entryType.IsValid() {
		return Entry{}, shared.ValidationError{Field: "type", Code: shared.CodeInvalidType}
	}
	if !amount.IsPositive() {
		return Entry{}, shared.ValidationError{Field: "amount", Code: shared.CodeInvalidAmount}
	}

	return Entry{
		ID:          uuid.New(),
		ContactID:   contactID,
		Type:        entryType,
		Amount:      amount,
		Date:        DayOf(date),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Validate checks the invariants of an entry loaded from storage
func (e Entry) Validate() error {
	if e.ID == uuid.Nil {
		return shared.ValidationError{Field: "id", Code: "missing_id"}
	}
	if !e.Type.IsValid() {
		return shared.ValidationError{Field: "type", Code: shared.CodeInvalidType}
	}
	if !e.Amount.IsPositive() {
		return shared.ValidationError{Field: "amount", Code: shared.CodeInvalidAmount}
	}
	return nil
}

// Signed returns the amount with the sign implied by the entry type
func (e Entry) Signed() decimal.Decimal {
	return e.Amount.Mul(decimal.NewFromInt(e.Type.Sign()))
}

// ParseAmount parses a user-submitted amount and requires it to be strictly positive
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, shared.ValidationError{Field: "amount", Code: shared.CodeInvalidAmount}
	}
	return amount, nil
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, shared.ValidationError{Field: "date", Code: shared.CodeInvalidDate}
	}
	return d, nil
}

// DayOf truncates t to its calendar day, expressed at UTC midnight
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
