package khata

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustContact(t *testing.T, name, phone string) *contact.Contact {
	t.Helper()
	c, err := contact.NewContact(name, phone)
	require.NoError(t, err)
	return c
}

func TestRegistry_AddGet(t *testing.T) {
	r := NewRegistry()
	c := mustContact(t, "Rohan Sharma", "")

	require.NoError(t, r.Add(c))
	assert.Error(t, r.Add(c), "duplicate ids are rejected")

	got, err := r.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	assert.True(t, r.Exists(c.ID))
	assert.Equal(t, 1, r.Len())

	got.Balance = decimal.NewFromInt(99)
	again, err := r.Get(c.ID)
	require.NoError(t, err)
	assert.True(t, again.Balance.IsZero(), "callers must not be able to mutate registry state")
}

func TestRegistry_GetMissing(t *testing.T) {
	r := NewRegistry()
	missing := uuid.New()

	_, err := r.Get(missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.NotFoundError{Resource: "contact", ID: missing.String()}))
	assert.False(t, r.Exists(missing))
}

func TestRegistry_ListAndSearch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(mustContact(t, "priya singh", "9123456780")))
	require.NoError(t, r.Add(mustContact(t, "Amit", "")))
	require.NoError(t, r.Add(mustContact(t, "Rohan Sharma", "9876543210")))

	all := r.List()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Amit", "priya singh", "Rohan Sharma"}, []string{all[0].Name, all[1].Name, all[2].Name})

	byName := r.Search("ROHAN")
	require.Len(t, byName, 1)
	assert.Equal(t, "Rohan Sharma", byName[0].Name)

	byPhone := r.Search("91234")
	require.Len(t, byPhone, 1)
	assert.Equal(t, "priya singh", byPhone[0].Name)

	assert.Empty(t, r.Search("nobody"))
}

func TestRegistry_ApplyEntry(t *testing.T) {
	r := NewRegistry()
	c := mustContact(t, "Priya Singh", "")
	require.NoError(t, r.Add(c))
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	payment, err := ledger.NewEntry(c.ID, ledger.EntryTypePayment, decimal.NewFromInt(1000), day, "")
	require.NoError(t, err)
	credit, err := ledger.NewEntry(c.ID, ledger.EntryTypeCredit, decimal.NewFromInt(250), day, "")
	require.NoError(t, err)

	balance, err := r.ApplyEntry(c.ID, payment, []ledger.Entry{payment})
	require.NoError(t, err)
	assert.Equal(t, "-1000", balance.String())

	balance, err = r.ApplyEntry(c.ID, credit, []ledger.Entry{payment, credit})
	require.NoError(t, err)
	assert.Equal(t, "-750", balance.String())

	got, err := r.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "-750", got.Balance.String())
	assert.Equal(t, credit.CreatedAt, got.UpdatedAt)
}

func TestRegistry_ApplyEntryDivergence(t *testing.T) {
	r := NewRegistry()
	c := mustContact(t, "Rohan", "")
	c.Balance = decimal.NewFromInt(5) // cache out of step with an empty entry log
	require.NoError(t, r.Add(c))

	entry, err := ledger.NewEntry(c.ID, ledger.EntryTypeCredit, decimal.NewFromInt(10), time.Now(), "")
	require.NoError(t, err)

	balance, err := r.ApplyEntry(c.ID, entry, []ledger.Entry{entry})
	var diverged ErrBalanceDiverged
	require.ErrorAs(t, err, &diverged)
	assert.Equal(t, "15", diverged.Cached.String())
	assert.Equal(t, "10", diverged.Projected.String())
	assert.Equal(t, "10", balance.String(), "the projection wins")

	got, _ := r.Get(c.ID)
	assert.Equal(t, "10", got.Balance.String())
}

func TestRegistry_ApplyEntryUnknownContact(t *testing.T) {
	r := NewRegistry()
	_, err := r.ApplyEntry(uuid.New(), ledger.Entry{}, nil)
	assert.ErrorIs(t, err, shared.NotFoundError{})
}
