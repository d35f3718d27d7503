package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/globalconnect/internal/client/api"
	"github.com/iudanet/globalconnect/internal/client/auth"
	"github.com/iudanet/globalconnect/internal/client/catalog"
	"github.com/iudanet/globalconnect/internal/client/cli"
	"github.com/iudanet/globalconnect/internal/client/iocli"
	"github.com/iudanet/globalconnect/internal/client/storage"
	"github.com/iudanet/globalconnect/internal/client/storage/boltdb"
	"github.com/iudanet/globalconnect/internal/crypto"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	envServer     = "GLOBALCONNECT_SERVER"
	envPassphrase = "GLOBALCONNECT_STORAGE_PASSPHRASE"
)

func main() {
	defaultServer := "http://localhost:8000"
	if v := os.Getenv(envServer); v != "" {
		defaultServer = v
	}

	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", defaultServer, "Backend URL (without /api)")
	dbPath := flag.String("db", "globalconnect-client.db", "Path to local database")
	verbose := flag.Bool("verbose", false, "Log debug information to stderr")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stdio, logger, *serverURL, *dbPath, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, stdio iocli.IO, logger *slog.Logger, serverURL, dbPath string, args []string) error {
	boltStorage, err := boltdb.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := unlockStorage(ctx, boltStorage, dbPath); err != nil {
		return err
	}

	apiClient := api.NewClient(serverURL, boltStorage, api.WithLogger(logger))
	session := auth.NewSession(apiClient, boltStorage, logger)
	listings := catalog.New(boltStorage, boltStorage, logger)

	app := cli.New(stdio, session, apiClient, listings)
	return app.Run(ctx, args[0], args[1:])
}

// unlockStorage выбирает ключ хранилища: из passphrase, если она задана,
// иначе из файла ключа устройства рядом с базой.
func unlockStorage(ctx context.Context, s *boltdb.Storage, dbPath string) error {
	var key []byte
	if passphrase := os.Getenv(envPassphrase); passphrase != "" {
		salt, err := s.GetOrCreateSalt(ctx)
		if err != nil {
			return fmt.Errorf("failed to load storage salt: %w", err)
		}
		if key, err = crypto.DeriveKey(passphrase, salt); err != nil {
			return fmt.Errorf("failed to derive storage key: %w", err)
		}
	} else {
		var err error
		if key, err = crypto.LoadOrCreateKeyFile(dbPath + ".key"); err != nil {
			return fmt.Errorf("failed to load device key: %w", err)
		}
	}

	if err := s.Unlock(ctx, key); err != nil {
		if errors.Is(err, storage.ErrWrongKey) {
			return fmt.Errorf("cannot unlock %s: the key does not match (check %s): %w", dbPath, envPassphrase, err)
		}
		return fmt.Errorf("failed to unlock storage: %w", err)
	}
	return nil
}

func printVersion() {
	fmt.Printf("GlobalConnect Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
