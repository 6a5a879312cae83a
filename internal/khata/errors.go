package khata

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDuplicateEntry indicates an attempt to append an entry id that already exists
type ErrDuplicateEntry struct {
	EntryID uuid.UUID
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.EntryID.String()
}

// Is implements the errors.Is interface for ErrDuplicateEntry
func (e ErrDuplicateEntry) Is(target error) bool {
	t, ok := target.(ErrDuplicateEntry)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}

// ErrBalanceDiverged reports that the incrementally cached balance no longer matches
// the projection of the contact's entries
type ErrBalanceDiverged struct {
	ContactID uuid.UUID
	Cached    decimal.Decimal
	Projected decimal.Decimal
}

func (e ErrBalanceDiverged) Error() string {
	return fmt.Sprintf("cached balance %s diverged from projected balance %s for contact %s",
		e.Cached, e.Projected, e.ContactID)
}

// ErrCorruptSnapshot indicates persisted data that cannot be reconstructed into a valid ledger
type ErrCorruptSnapshot struct {
	Key    string
	Reason string
}

func (e ErrCorruptSnapshot) Error() string {
	return fmt.Sprintf("corrupt snapshot at %q: %s", e.Key, e.Reason)
}
