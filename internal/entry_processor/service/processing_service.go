package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/khata-ledger/internal/domain/ledger"
	"github.com/khata-ledger/internal/domain/shared"
	"github.com/khata-ledger/internal/khata"
)

type ProcessingServiceImpl struct {
	recorder        EntryRecorder
	failureRecorder FailureRecorder
	logger          *slog.Logger
}

func NewProcessingService(
	recorder EntryRecorder,
	failureRecorder FailureRecorder,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		recorder:        recorder,
		failureRecorder: failureRecorder,
		logger:          logger,
	}
}

// ProcessRecordRequest records the requested entry using the request id as idempotency key,
// so a redelivered message never records twice. Rejections caused by the request itself are
// handed to the failure recorder and acknowledged; anything else is returned for redelivery.
func (s *ProcessingServiceImpl) ProcessRecordRequest(ctx context.Context, request *shared.RecordRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}
	logger = logger.With("request_id", request.RequestID.String(), "contact_id", request.ContactID)

	params, err := toRecordParams(request)
	if err != nil {
		return s.reject(ctx, logger, request, err)
	}

	tx, err := s.recorder.Record(ctx, params)
	if err != nil {
		if khata.IsClientError(err) {
			return s.reject(ctx, logger, request, err)
		}
		logger.Error("Failed to record entry, message will be redelivered", "error", err)
		return fmt.Errorf("recording request %s failed: %w", request.RequestID.String(), err)
	}

	if tx.Replayed {
		logger.Info("Record request already processed", "entry_id", tx.Entry.ID.String())
		return nil
	}

	logger.Info("Record request processed",
		"entry_id", tx.Entry.ID.String(),
		"balance", tx.Balance.String(),
	)
	return nil
}

func (s *ProcessingServiceImpl) reject(ctx context.Context, logger *slog.Logger, request *shared.RecordRequest, cause error) error {
	logger.Warn("Record request rejected", "error", cause)

	if err := s.failureRecorder.RecordFailure(ctx, request, cause.Error()); err != nil {
		logger.Error("Failed to record rejected request", "error", err)
		return fmt.Errorf("failed to record rejection of %s: %w", request.RequestID.String(), err)
	}
	return nil
}

// toRecordParams requires a request id: it is the idempotency key that keeps redeliveries
// from recording twice, and a shared zero id would turn distinct requests into replays.
func toRecordParams(request *shared.RecordRequest) (khata.RecordParams, error) {
	if request.RequestID == uuid.Nil {
		return khata.RecordParams{}, shared.ValidationError{Field: "request_id", Code: shared.CodeMissingID}
	}

	entryType, err := ledger.ParseEntryType(request.Type)
	if err != nil {
		return khata.RecordParams{}, err
	}

	var date time.Time
	if request.Date != "" {
		if date, err = ledger.ParseDate(request.Date); err != nil {
			return khata.RecordParams{}, err
		}
	}

	return khata.RecordParams{
		ContactID:      request.ContactID,
		Amount:         request.Amount,
		Type:           entryType,
		Description:    request.Description,
		Date:           date,
		IdempotencyKey: request.RequestID.String(),
	}, nil
}
