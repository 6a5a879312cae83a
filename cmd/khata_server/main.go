package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/khata-ledger/internal/api"
	"github.com/khata-ledger/internal/config"
	"github.com/khata-ledger/internal/data"
	"github.com/khata-ledger/internal/entry_processor/components"
	"github.com/khata-ledger/internal/entry_processor/consumer"
	"github.com/khata-ledger/internal/entry_processor/service"
	"github.com/khata-ledger/internal/khata"
	"github.com/khata-ledger/internal/logger"
	"github.com/khata-ledger/internal/platform/messaging/consumers"
	"github.com/khata-ledger/internal/platform/messaging/producers"
)

func main() {
	// A missing .env is fine, the environment and config file still apply
	_ = godotenv.Load()

	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("khata")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting khata server",
		"env", cfg.Application.Env,
		"storage_driver", cfg.Storage.Driver,
		"kafka_enabled", cfg.Kafka.Enabled,
	)

	store, closeStore, err := data.OpenStore(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}

	opts := []khata.Option{
		khata.WithCurrency(cfg.Ledger.Currency),
		khata.WithKeyPrefix(cfg.Ledger.KeyPrefix),
	}

	var eventProducer *producers.EntryEventProducer
	if cfg.Kafka.Enabled {
		eventProducer, err = producers.NewEntryEventProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize entry event producer", "error", err)
			os.Exit(1)
		}
		opts = append(opts, khata.WithEventPublisher(eventProducer))
	}

	khataService := khata.NewService(log, store, opts...)
	if err := khataService.Load(appCtx); err != nil {
		log.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(log, cfg, khataService)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var (
		kafkaConsumer     *consumers.KafkaConsumer
		dlqProducer       *producers.DLQProducer
		processingService service.ProcessingService
	)
	if cfg.Kafka.Enabled {
		dlqProducer, err = producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize DLQ Kafka producer", "error", err)
			os.Exit(1)
		}

		processingService = components.CreateProcessingService(khataService, dlqProducer, log, cfg)
		requestHandler := consumer.NewRecordRequestHandler(log, processingService, dlqProducer)

		kafkaConsumer = consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.RecordTopic, cfg.Kafka.ConsumerGroup, requestHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}
	wg.Wait()

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			log.Error("Error closing Kafka consumer", "error", err)
			shutdownErr = err
		}
	}
	if wpService, ok := processingService.(*service.WorkerPoolProcessingService); ok {
		log.Info("Shutting down worker pool", "running_workers", wpService.Running())
		wpService.Shutdown()
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
		shutdownErr = err
	}
	if eventProducer != nil {
		if err := eventProducer.Close(); err != nil {
			log.Error("Error closing entry event producer", "error", err)
			shutdownErr = err
		}
	}

	if err := closeStore(shutdownCtx); err != nil {
		log.Error("Error closing storage", "error", err)
		shutdownErr = err
	}

	if serviceErr != nil || shutdownErr != nil {
		log.Error("khata server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("khata server shutdown completed successfully")
}
