package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/app"
	"github.com/vladislavdragonenkov/pos/internal/storage/sqlite"
)

const (
	defaultTimeout = 30 * time.Second
)

// status: вывод -action=status.
type status struct {
	Path string `json:"path"`
	sqlite.Counts
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fail("read .env: %v", err)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.WarnLevel)

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fail("%v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := app.ConfigFromEnv()
	if err != nil {
		return err
	}

	flags := flag.NewFlagSet("posdb", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	action := flags.String("action", "status", "action: init|reset|status")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "database file (fallback: POS_DB_PATH)")
	flags.StringVar(&cfg.SeedLocale, "seed-locale", cfg.SeedLocale, "built-in seed locale (fr|en)")
	flags.StringVar(&cfg.SeedFile, "seed-file", cfg.SeedFile, "seed YAML file, overrides -seed-locale")
	if err := flags.Parse(args); err != nil {
		return err
	}

	store, err := app.OpenStore(ctx, cfg, nil, log.WithField("component", "posdb"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	switch strings.ToLower(strings.TrimSpace(*action)) {
	case "init":
		_, _ = fmt.Fprintf(stdout, "init ok: %s\n", store.Path())
		return nil
	case "reset":
		if err := store.Reset(ctx); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		_, _ = fmt.Fprintf(stdout, "reset ok: %s\n", store.Path())
		return nil
	case "status":
		counts, err := store.Counts(ctx)
		if err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status{Path: store.Path(), Counts: counts})
	default:
		return fmt.Errorf("unsupported action: %s (use init|reset|status)", *action)
	}
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
