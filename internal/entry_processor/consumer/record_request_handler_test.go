package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khata-ledger/internal/domain/shared"
	"github.com/khata-ledger/internal/platform/messaging/producers"
)

type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessRecordRequest(ctx context.Context, request *shared.RecordRequest) error {
	return m.Called(ctx, request).Error(0)
}

type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	return m.Called(ctx, key, originalMessageValue, reason).Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	return m.Called().Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRecordRequestHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()
	request := shared.RecordRequest{
		RequestID:     uuid.New(),
		ContactID:     uuid.NewString(),
		Amount:        "250.50",
		Type:          "payment",
		CorrelationID: "corr-9",
	}
	payload, err := json.Marshal(request)
	require.NoError(t, err)

	t.Run("ProcessesDecodedRequest", func(t *testing.T) {
		processing := new(MockProcessingService)
		handler := NewRecordRequestHandler(discardLogger(), processing, new(MockDeadLetterPublisher))

		processing.On("ProcessRecordRequest", ctx, mock.MatchedBy(func(r *shared.RecordRequest) bool {
			return r.RequestID == request.RequestID && r.Amount == "250.50" && r.Type == "payment"
		})).Return(nil).Once()

		assert.NoError(t, handler.HandleMessage(ctx, []byte("k"), payload))
		processing.AssertExpectations(t)
	})

	t.Run("ProcessingErrorIsReturned", func(t *testing.T) {
		processing := new(MockProcessingService)
		handler := NewRecordRequestHandler(discardLogger(), processing, nil)
		processErr := errors.New("store unavailable")

		processing.On("ProcessRecordRequest", ctx, mock.Anything).Return(processErr).Once()

		err := handler.HandleMessage(ctx, []byte("k"), payload)
		assert.ErrorIs(t, err, processErr)
	})

	t.Run("UnparseableMessageGoesToDLQ", func(t *testing.T) {
		processing := new(MockProcessingService)
		dlq := new(MockDeadLetterPublisher)
		handler := NewRecordRequestHandler(discardLogger(), processing, dlq)
		garbage := []byte("{not json")

		dlq.On("PublishToDLQ", ctx, "k", garbage, mock.MatchedBy(func(reason string) bool {
			return len(reason) > 0
		})).Return(nil).Once()

		assert.NoError(t, handler.HandleMessage(ctx, []byte("k"), garbage))
		dlq.AssertExpectations(t)
		processing.AssertNotCalled(t, "ProcessRecordRequest", mock.Anything, mock.Anything)
	})

	t.Run("DLQFailureIsReturned", func(t *testing.T) {
		dlq := new(MockDeadLetterPublisher)
		handler := NewRecordRequestHandler(discardLogger(), new(MockProcessingService), dlq)
		dlqErr := errors.New("dlq down")

		dlq.On("PublishToDLQ", ctx, mock.Anything, mock.Anything, mock.Anything).Return(dlqErr).Once()

		assert.ErrorIs(t, handler.HandleMessage(ctx, []byte("k"), []byte("[")), dlqErr)
	})

	t.Run("DisabledDLQDropsUnparseable", func(t *testing.T) {
		assert.NoError(t, NewRecordRequestHandler(discardLogger(), new(MockProcessingService), nil).
			HandleMessage(ctx, []byte("k"), []byte("[")))

		var disabled *producers.DLQProducer
		assert.NoError(t, NewRecordRequestHandler(discardLogger(), new(MockProcessingService), disabled).
			HandleMessage(ctx, []byte("k"), []byte("[")))
	})
}
