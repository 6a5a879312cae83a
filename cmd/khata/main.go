package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/khata-ledger/internal/cli"
	"github.com/khata-ledger/internal/config"
	"github.com/khata-ledger/internal/data"
	"github.com/khata-ledger/internal/khata"
	"github.com/khata-ledger/internal/logger"
)

func main() {
	os.Exit(int(run(context.Background())))
}

func run(ctx context.Context) subcommands.ExitStatus {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("khata")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	// Diagnostics go to stderr and only when asked for, stdout carries command output
	logOut := io.Discard
	if strings.EqualFold(cfg.Logging.Level, "debug") {
		logOut = os.Stderr
	}
	log := logger.New(logOut, cfg)

	store, closeStore, err := data.OpenStore(ctx, log, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		return subcommands.ExitFailure
	}
	defer func() {
		if err := closeStore(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close storage: %v\n", err)
		}
	}()

	svc := khata.NewService(log, store,
		khata.WithCurrency(cfg.Ledger.Currency),
		khata.WithKeyPrefix(cfg.Ledger.KeyPrefix),
	)
	if err := svc.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	app := &cli.App{Service: svc, Out: os.Stdout, Err: os.Stderr}
	return cli.Run(ctx, app, path.Base(os.Args[0]), os.Args[1:])
}
