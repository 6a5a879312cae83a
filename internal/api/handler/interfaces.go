package handler

import (
	"context"

	"github.com/khata-ledger/internal/domain/contact"
	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/khata"
)

// KhataService is the ledger engine as seen by the HTTP handlers
type KhataService interface {
	Currency() string
	CreateContact(ctx context.Context, name, phone string) (*contact.Contact, error)
	GetContact(ctx context.Context, id string) (*contact.Contact, error)
	ListContacts(ctx context.Context, query string) []*contact.Contact
	Entries(ctx context.Context, id string, q khata.EntryQuery) ([]ledger.Entry, error)
	Record(ctx context.Context, params khata.RecordParams) (*khata.Transaction, error)
	Verify(ctx context.Context, id string) (*khata.VerifyResult, error)
}

var _ KhataService = (*khata.Service)(nil)
