package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
)

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Migrate(version uint) error
}

type command func(m migrator, args []string, logger *logging.Logger, out io.Writer) error

var commands = map[string]command{
	"up":      upCommand,
	"down":    downCommand,
	"version": versionCommand,
	"force":   forceCommand,
	"goto":    gotoCommand,
	"migrate": gotoCommand,
}

func upCommand(m migrator, _ []string, logger *logging.Logger, _ io.Writer) error {
	return reportChange(m.Up(), logger, "migrations applied")
}

func downCommand(m migrator, args []string, logger *logging.Logger, _ io.Writer) error {
	steps := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: down steps must be a positive integer, got %q", errUsage, args[0])
		}
		steps = n
	}
	return reportChange(m.Steps(-steps), logger, "migrations rolled back", "steps", steps)
}

func versionCommand(m migrator, _ []string, _ *logging.Logger, out io.Writer) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		_, err = fmt.Fprintln(out, "version: none\ndirty: false")
		return err
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	_, err = fmt.Fprintf(out, "version: %d\ndirty: %t\n", version, dirty)
	return err
}

func forceCommand(m migrator, args []string, logger *logging.Logger, _ io.Writer) error {
	version, err := versionArg(args)
	if err != nil {
		return err
	}
	if version > math.MaxInt {
		return fmt.Errorf("version %d is too large for this platform", version)
	}
	if err := m.Force(int(version)); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	logger.Info("forced migration version", "version", version)
	return nil
}

func gotoCommand(m migrator, args []string, logger *logging.Logger, _ io.Writer) error {
	version, err := versionArg(args)
	if err != nil {
		return err
	}
	return reportChange(m.Migrate(version), logger, "migrated", "version", version)
}

func versionArg(args []string) (uint, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: a version argument is required", errUsage)
	}
	value, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid version %q", errUsage, args[0])
	}
	return uint(value), nil
}

// reportChange treats ErrNoChange as success.
func reportChange(err error, logger *logging.Logger, msg string, args ...any) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info(msg, args...)
	return nil
}
