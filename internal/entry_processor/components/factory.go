package components

import (
	"log/slog"

	"github.com/khata-ledger/internal/config"
	"github.com/khata-ledger/internal/entry_processor/service"
	"github.com/khata-ledger/internal/platform/messaging/producers"
)

// CreateProcessingService wires the recorder behind a worker pool of cfg.WorkerPool.Size workers.
func CreateProcessingService(
	recorder service.EntryRecorder,
	dlq producers.DeadLetterPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	failureRecorder := NewFailureRecorder(dlq, logger)
	baseService := service.NewProcessingService(recorder, failureRecorder, logger)

	workerPoolService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
