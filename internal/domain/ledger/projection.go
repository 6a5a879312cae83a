package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Direction describes who owes whom for a given balance
type Direction string

const (
	DirectionOwedToStore Direction = "owed_to_store"
	DirectionOwedByStore Direction = "owed_by_store"
	DirectionSettled     Direction = "settled"
)

// Projection is the result of folding a contact's entries
type Projection struct {
	Balance decimal.Decimal
}

// Project folds entries into a signed balance: +amount for credits, -amount for payments.
// It depends on nothing but its input.
func Project(entries []Entry) Projection {
	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Signed())
	}
	return Projection{Balance: balance}
}

// Label is the display-ready reading of a balance
type Label struct {
	Direction Direction       `json:"direction"`
	Magnitude decimal.Decimal `json:"magnitude"`
}

// LabelFor maps a balance to its direction and absolute magnitude
func LabelFor(balance decimal.Decimal) Label {
	switch balance.Sign() {
	case 1:
		return Label{Direction: DirectionOwedToStore, Magnitude: balance}
	case -1:
		return Label{Direction: DirectionOwedByStore, Magnitude: balance.Abs()}
	default:
		return Label{Direction: DirectionSettled, Magnitude: decimal.Zero}
	}
}

// Text renders the label, e.g. "Owes you: ₹1,500.00"
func (l Label) Text(currency string) string {
	switch l.Direction {
	case DirectionOwedToStore:
		return "Owes you: " + FormatAmount(l.Magnitude, currency)
	case DirectionOwedByStore:
		return "You owe: " + FormatAmount(l.Magnitude, currency)
	default:
		return "Settled"
	}
}

// SortByDate returns a copy of entries ordered by date. Entries sharing a date keep
// their insertion order.
func SortByDate(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Between keeps the entries dated within [from, to]. A zero bound is open.
func Between(entries []Entry, from, to time.Time) []Entry {
	if from.IsZero() && to.IsZero() {
		return entries
	}
	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !from.IsZero() && e.Date.Before(DayOf(from)) {
			continue
		}
		if !to.IsZero() && e.Date.After(DayOf(to)) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
