package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/matchday-preview/internal/config"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/riskibarqy/matchday-preview/internal/platform/pgdsn"
)

var errUsage = errors.New("usage")

func main() {
	logger := logging.New(logging.Options{
		Level:   logging.LevelInfo,
		Service: "matchday-preview-migration",
	})
	defer func() { _ = logger.Sync() }()

	err := run(os.Args[1:], logger, os.Stdout)
	switch {
	case err == nil:
		return
	case errors.Is(err, errUsage):
		printUsage(os.Stderr)
		_ = logger.Sync()
		os.Exit(2)
	default:
		logger.Error("migration command failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(args []string, logger *logging.Logger, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return errors.New("DB_URL is required")
	}
	disableBinary, _ := strconv.ParseBool(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT"))

	dir, err := findMigrationsDir(
		os.Getenv("MIGRATIONS_DIR"),
		os.Getenv("MIGRATIONS_PATH"),
		"./db/migrations",
		"/app/db/migrations",
	)
	if err != nil {
		return err
	}

	source := "file://" + filepath.ToSlash(dir)
	m, err := migrate.New(source, pgdsn.Resolve(dbURL, disableBinary).DSN)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	logger.Info("running migration command", "command", args[0], "source", source)
	return cmd(m, args[1:], logger, out)
}

func findMigrationsDir(candidates ...string) (string, error) {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migrations directory not found (set MIGRATIONS_DIR)")
}

func printUsage(w io.Writer) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "usage: %s <up|down|version|force|goto> [args]\n", name)
	fmt.Fprintln(w, "examples:")
	for _, example := range []string{"up", "down 1", "version", "force 1790000000", "goto 1790000000"} {
		fmt.Fprintf(w, "  %s %s\n", name, example)
	}
}
