package service

import (
	"context"

	"github.com/khata-ledger/internal/domain/shared"
	"github.com/khata-ledger/internal/khata"
)

// ProcessingService defines the interface for processing record requests.
type ProcessingService interface {
	ProcessRecordRequest(ctx context.Context, request *shared.RecordRequest) error
}

// EntryRecorder records entries against the live ledger
type EntryRecorder interface {
	Record(ctx context.Context, params khata.RecordParams) (*khata.Transaction, error)
}

// FailureRecorder parks requests that can never succeed
type FailureRecorder interface {
	RecordFailure(ctx context.Context, request *shared.RecordRequest, failureReason string) error
}
