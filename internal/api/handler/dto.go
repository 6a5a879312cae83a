package handler

import (
	"time"

	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/khata"
)

// CreateContactRequest represents a request to register a new contact
type CreateContactRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

// LabelResponse is the human-facing reading of a balance
type LabelResponse struct {
	Direction string `json:"direction"`
	Magnitude string `json:"magnitude"`
	Text      string `json:"text"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone,omitempty"`
	Balance   string        `json:"balance"`
	Label     LabelResponse `json:"label"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

// RecordEntryRequest represents a credit or payment submission. Amount is a decimal string.
type RecordEntryRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD, defaults to today
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID          string `json:"id"`
	ContactID   string `json:"contact_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// RecordEntryResponse is returned after an entry is recorded or replayed
type RecordEntryResponse struct {
	Entry    EntryResponse `json:"entry"`
	Balance  string        `json:"balance"`
	Label    LabelResponse `json:"label"`
	Replayed bool          `json:"replayed"`
}

// VerifyResponse reports the balance self-check of a contact
type VerifyResponse struct {
	ContactID  string `json:"contact_id"`
	Cached     string `json:"cached"`
	Recomputed string `json:"recomputed"`
	Consistent bool   `json:"consistent"`
}

// EntryListParams represents the query string of the entry listing
type EntryListParams struct {
	Order    string `form:"order"`
	From     string `form:"from"`
	To       string `form:"to"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
}

func mapLabel(label ledger.Label, currency string) LabelResponse {
	return LabelResponse{
		Direction: string(label.Direction),
		Magnitude: label.Magnitude.String(),
		Text:      label.Text(currency),
	}
}

func mapContactToResponse(c *contact.Contact, currency string) ContactResponse {
	return ContactResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		Balance:   c.Balance.String(),
		Label:     mapLabel(ledger.LabelFor(c.Balance), currency),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func mapEntryToResponse(e ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID.String(),
		ContactID:   e.ContactID.String(),
		Type:        string(e.Type),
		Amount:      e.Amount.String(),
		Date:        e.Date.Format(ledger.DateLayout),
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func mapTransactionToResponse(tx *khata.Transaction, currency string) RecordEntryResponse {
	return RecordEntryResponse{
		Entry:    mapEntryToResponse(tx.Entry),
		Balance:  tx.Balance.String(),
		Label:    mapLabel(tx.Label, currency),
		Replayed: tx.Replayed,
	}
}
