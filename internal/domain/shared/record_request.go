package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordRequest defines a Kafka message asking for a ledger entry to be recorded.
// Amount is kept as the raw submitted string and parsed by the recorder.
type RecordRequest struct {
	RequestID     uuid.UUID `json:"request_id"`
	ContactID     string    `json:"contact_id"`
	Amount        string    `json:"amount"`
	Type          string    `json:"type"`
	Description   string    `json:"description,omitempty"`
	Date          string    `json:"date,omitempty"` // YYYY-MM-DD, defaults to the processing day
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// EntryRecordedEvent is published once an entry has been durably recorded
type EntryRecordedEvent struct {
	EntryID     uuid.UUID       `json:"entry_id"`
	ContactID   uuid.UUID       `json:"contact_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	Direction   string          `json:"direction"`
	RecordedAt  time.Time       `json:"recorded_at"`
}
