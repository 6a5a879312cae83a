package khata

import (
	"context"
	"errors"
	"time"

	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RecordParams is a submitted credit or payment
type RecordParams struct {
	ContactID   string
	Amount      string // raw user input, parsed as a decimal
	Type        ledger.EntryType
	Description string
	// Date defaults to today when zero
	Date time.Time
	// IdempotencyKey makes retries of the same submission record a single entry
	IdempotencyKey string
}

// Transaction is the result of a successful record
type Transaction struct {
	Entry    ledger.Entry    `json:"entry"`
	Balance  decimal.Decimal `json:"balance"`
	Label    ledger.Label    `json:"label"`
	Replayed bool            `json:"replayed"`
}

// Record validates the submission, persists the contact with the new entry and only then
// applies the entry to the in-memory ledger. On any error the in-memory state is unchanged.
func (s *Service) Record(ctx context.Context, params RecordParams) (*Transaction, error) {
	amount, err := ledger.ParseAmount(params.Amount)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckScale(amount, s.currency); err != nil {
		return nil, err
	}
	if !params.Type.IsValid() {
		return nil, shared.ValidationError{Field: "type", Code: shared.CodeInvalidType}
	}
	contactID, err := parseContactID(params.ContactID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(contactID)
	lock.Lock()
	defer lock.Unlock()

	c, err := s.registry.Get(contactID)
	if err != nil {
		return nil, err
	}

	if existing, ok := s.entries.FindByIdempotencyKey(contactID, params.IdempotencyKey); ok {
		s.logger.Info("duplicate submission, returning recorded entry",
			"contact_id", contactID, "entry_id", existing.ID, "idempotency_key", params.IdempotencyKey)
		return &Transaction{Entry: existing, Balance: c.Balance, Label: ledger.LabelFor(c.Balance), Replayed: true}, nil
	}

	date := params.Date
	if date.IsZero() {
		date = s.now()
	}
	entry, err := ledger.NewEntry(contactID, params.Type, amount, date, params.Description)
	if err != nil {
		return nil, err
	}
	entry.IdempotencyKey = params.IdempotencyKey
	entry.CreatedAt = s.now().UTC()

	current, err := s.entries.EntriesFor(contactID)
	if err != nil {
		return nil, err
	}
	staged := append(current, entry)

	stagedContact := c.Clone()
	stagedContact.Balance = ledger.Project(staged).Balance
	stagedContact.UpdatedAt = entry.CreatedAt

	if err := s.snapshots.saveContact(ctx, newContactDocument(stagedContact, staged)); err != nil {
		s.logger.Error("failed to persist entry, ledger left unchanged",
			"contact_id", contactID, "entry_id", entry.ID, "error", err)
		return nil, err
	}

	if err := s.entries.Commit(entry); err != nil {
		return nil, err
	}
	balance, err := s.registry.ApplyEntry(contactID, entry, staged)
	if err != nil {
		var diverged ErrBalanceDiverged
		if !errors.As(err, &diverged) {
			return nil, err
		}
		s.logger.Error("cached balance diverged from projection", "contact_id", contactID, "error", err)
	}

	tx := &Transaction{Entry: entry, Balance: balance, Label: ledger.LabelFor(balance)}
	s.logger.Info("entry recorded",
		"contact_id", contactID, "entry_id", entry.ID, "type", entry.Type,
		"amount", entry.Amount, "balance", balance)

	s.publishRecorded(ctx, tx)
	return tx, nil
}

// publishRecorded notifies the publisher while the contact lock is still held so that a
// contact's events leave in commit order. Failures are logged only.
func (s *Service) publishRecorded(ctx context.Context, tx *Transaction) {
	if s.publisher == nil {
		return
	}

	event := shared.EntryRecordedEvent{
		EntryID:     tx.Entry.ID,
		ContactID:   tx.Entry.ContactID,
		Type:        string(tx.Entry.Type),
		Amount:      tx.Entry.Amount,
		Date:        tx.Entry.Date.Format(ledger.DateLayout),
		Description: tx.Entry.Description,
		Balance:     tx.Balance,
		Direction:   string(tx.Label.Direction),
		RecordedAt:  tx.Entry.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, tx.Entry.ContactID.String(), event); err != nil {
		s.logger.Warn("failed to publish entry recorded event",
			"contact_id", tx.Entry.ContactID, "entry_id", tx.Entry.ID, "error", err)
	}
}
