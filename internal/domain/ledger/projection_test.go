package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryOf(t EntryType, amount int64, date time.Time) Entry {
	return Entry{ID: uuid.New(), Type: t, Amount: decimal.NewFromInt(amount), Date: date}
}

func TestProject(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		assert.True(t, Project(nil).Balance.IsZero())
	})

	t.Run("CreditThenPayment", func(t *testing.T) {
		entries := []Entry{
			entryOf(EntryTypeCredit, 2000, day),
			entryOf(EntryTypePayment, 500, day),
		}
		assert.Equal(t, "1500", Project(entries).Balance.String())
	})

	t.Run("PaymentThenCredit", func(t *testing.T) {
		entries := []Entry{
			entryOf(EntryTypePayment, 1000, day),
			entryOf(EntryTypeCredit, 250, day),
		}
		assert.Equal(t, "-750", Project(entries).Balance.String())
	})

	t.Run("Deterministic", func(t *testing.T) {
		entries := []Entry{
			{ID: uuid.New(), Type: EntryTypeCredit, Amount: decimal.RequireFromString("0.10")},
			{ID: uuid.New(), Type: EntryTypeCredit, Amount: decimal.RequireFromString("0.20")},
		}
		first := Project(entries)
		second := Project(entries)
		assert.True(t, first.Balance.Equal(second.Balance))
		assert.True(t, decimal.RequireFromString("0.3").Equal(first.Balance), "decimal fold must not drift")
	})
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		name      string
		balance   decimal.Decimal
		direction Direction
		magnitude string
	}{
		{"Positive", decimal.NewFromInt(1500), DirectionOwedToStore, "1500"},
		{"Negative", decimal.NewFromInt(-750), DirectionOwedByStore, "750"},
		{"Zero", decimal.Zero, DirectionSettled, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label := LabelFor(tt.balance)
			assert.Equal(t, tt.direction, label.Direction)
			assert.Equal(t, tt.magnitude, label.Magnitude.String())
		})
	}
}

func TestLabelFor_Consistency(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		balance := decimal.New(rng.Int63n(2_000_001)-1_000_000, -2)
		label := LabelFor(balance)

		assert.Equal(t, balance.IsPositive(), label.Direction == DirectionOwedToStore)
		assert.Equal(t, balance.IsNegative(), label.Direction == DirectionOwedByStore)
		assert.Equal(t, balance.IsZero(), label.Direction == DirectionSettled)
		assert.True(t, balance.Abs().Equal(label.Magnitude), "magnitude must equal abs(balance)")
	}
}

func TestLabel_Text(t *testing.T) {
	assert.Equal(t, "Owes you: ₹1,500.00", LabelFor(decimal.NewFromInt(1500)).Text("INR"))
	assert.Equal(t, "You owe: ₹750.00", LabelFor(decimal.NewFromInt(-750)).Text("INR"))
	assert.Equal(t, "Settled", LabelFor(decimal.Zero).Text("INR"))
	assert.Equal(t, "Owes you: ₹100,000,000,000,000,000,000.00", LabelFor(decimal.RequireFromString("1e20")).Text("INR"))
}

func TestSortByDate(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	first := entryOf(EntryTypeCredit, 1, feb)
	backdated := entryOf(EntryTypeCredit, 2, jan)
	sameDay := entryOf(EntryTypePayment, 3, feb)
	entries := []Entry{first, backdated, sameDay}

	sorted := SortByDate(entries)
	require.Len(t, sorted, 3)
	assert.Equal(t, backdated.ID, sorted[0].ID)
	assert.Equal(t, first.ID, sorted[1].ID, "ties keep insertion order")
	assert.Equal(t, sameDay.ID, sorted[2].ID)

	assert.Equal(t, first.ID, entries[0].ID, "input order must not change")
}

func TestBetween(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	entries := []Entry{entryOf(EntryTypeCredit, 1, jan), entryOf(EntryTypeCredit, 2, feb), entryOf(EntryTypeCredit, 3, mar)}

	assert.Len(t, Between(entries, time.Time{}, time.Time{}), 3)
	assert.Len(t, Between(entries, feb, time.Time{}), 2)
	assert.Len(t, Between(entries, time.Time{}, feb), 2)
	assert.Len(t, Between(entries, feb, feb), 1)
	assert.Empty(t, Between(entries, mar.AddDate(0, 0, 1), time.Time{}))
}
