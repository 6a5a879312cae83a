package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/khata-ledger/internal/domain/shared"
	"github.com/khata-ledger/internal/entry_processor/service"
	"github.com/khata-ledger/internal/platform/messaging/producers"
)

// RecordRequestHandler handles incoming record request messages from Kafka
type RecordRequestHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

func NewRecordRequestHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *RecordRequestHandler {
	return &RecordRequestHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage decodes a record request and hands it to the processing service.
// A nil return commits the message offset.
func (h *RecordRequestHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.RecordRequest
	if err := json.Unmarshal(value, &request); err != nil {
		h.logger.Error("Failed to unmarshal record request", "error", err, "message_key", string(key))
		return h.deadLetter(ctx, key, value, fmt.Sprintf("unparseable record request: %s", err))
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received record request",
		"request_id", request.RequestID.String(),
		"contact_id", request.ContactID,
		"type", request.Type,
		"amount", request.Amount,
	)

	if err := h.processingService.ProcessRecordRequest(ctx, &request); err != nil {
		return fmt.Errorf("processing record request %s failed: %w", request.RequestID.String(), err)
	}
	return nil
}

func (h *RecordRequestHandler) deadLetter(ctx context.Context, key, value []byte, reason string) error {
	if h.producer == nil {
		h.logger.Warn("Dropping unparseable message, DLQ disabled", "message_key", string(key))
		return nil
	}

	err := h.producer.PublishToDLQ(ctx, string(key), value, reason)
	if errors.Is(err, producers.ErrDLQDisabled) {
		h.logger.Warn("Dropping unparseable message, DLQ disabled", "message_key", string(key))
		return nil
	}
	if err != nil {
		h.logger.Error("Failed to publish unparseable message to DLQ", "dlq_error", err, "message_key", string(key))
		return fmt.Errorf("failed to dead-letter message %s: %w", string(key), err)
	}
	return nil
}
