package components

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

// DLQFailureRecorder parks rejected record requests on the dead letter topic
type DLQFailureRecorder struct {
	dlq    producers.DeadLetterPublisher
	logger *slog.Logger
}

func NewFailureRecorder(dlq producers.DeadLetterPublisher, logger *slog.Logger) service.FailureRecorder {
	return &DLQFailureRecorder{
		dlq:    dlq,
		logger: logger,
	}
}

// RecordFailure publishes the request with its rejection reason. Without a DLQ the
// rejection is only logged, since retrying a rejected request can never succeed.
func (r *DLQFailureRecorder) RecordFailure(ctx context.Context, request *shared.RecordRequest, failureReason string) error {
	logger := r.logger
	if request.CorrelationID != "" {
		logger = r.logger.With("correlation_id", request.CorrelationID)
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal rejected request: %w", err)
	}

	if r.dlq == nil {
		logger.Warn("Dropping rejected record request, DLQ disabled",
			"request_id", request.RequestID.String(), "reason", failureReason)
		return nil
	}

	err = r.dlq.PublishToDLQ(ctx, request.RequestID.String(), payload, failureReason)
	if errors.Is(err, producers.ErrDLQDisabled) {
		logger.Warn("Dropping rejected record request, DLQ disabled",
			"request_id", request.RequestID.String(), "reason", failureReason)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Rejected record request sent to DLQ", "request_id", request.RequestID.String(), "reason", failureReason)
	return nil
}
