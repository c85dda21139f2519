package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/cliprank/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "CLIPRANK_DB_DSN"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("cmd", "migrate")

	var (
		dsn     = flag.String("dsn", "", "Database URL (defaults to $"+envDSN+", then the service config)")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
		force   = flag.Int("force", -1, "Force set version (use with caution)")
	)
	flag.Parse()

	forceSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			forceSet = true
		}
	})

	url, err := resolveURL(*dsn)
	if err != nil {
		fail(logger, "resolve database url", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		fail(logger, "create migration source", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		fail(logger, "create migrator", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fail(logger, "read version", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	case forceSet:
		if err := m.Force(*force); err != nil {
			fail(logger, "force version", err)
		}
		logger.Info("version forced", "version", *force)
	case *up:
		if err := ignoreNoChange(m.Up()); err != nil {
			fail(logger, "apply migrations", err)
		}
		logger.Info("migrations applied")
	case *down:
		if err := ignoreNoChange(m.Down()); err != nil {
			fail(logger, "revert migrations", err)
		}
		logger.Info("migrations reverted")
	case *steps != 0:
		if err := ignoreNoChange(m.Steps(*steps)); err != nil {
			fail(logger, "step migrations", err)
		}
		logger.Info("migration steps applied", "steps", *steps)
	default:
		fmt.Println("usage: migrate [-dsn <url>] [-up|-down|-steps N|-version|-force N]")
		flag.PrintDefaults()
	}
}

// resolveURL prefers the flag, then the environment, then the database
// section of the service config.
func resolveURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	if cfg.Engine.Backend != config.BackendPostgres {
		return "", fmt.Errorf("engine backend is %q; pass -dsn to migrate a database", cfg.Engine.Backend)
	}
	return cfg.Database.URL(), nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func fail(logger *slog.Logger, op string, err error) {
	logger.Error(op+" failed", "error", err)
	os.Exit(1)
}
