package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
)

type fakeMigrator struct {
	steps     int
	forced    int
	target    uint
	upErr     error
	version   uint
	dirty     bool
	versionEr error
}

func (f *fakeMigrator) Up() error { return f.upErr }
func (f *fakeMigrator) Steps(n int) error { f.steps = n; return nil }
func (f *fakeMigrator) Force(version int) error { f.forced = version; return nil }
func (f *fakeMigrator) Migrate(version uint) error { f.target = version; return nil }
func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, f.versionEr }

func testLogger() *logging.Logger {
	return logging.New(logging.Options{Level: logging.LevelError, Service: "migration-test"})
}

func TestUpCommand_NoChangeIsSuccess(t *testing.T) {
	m := &fakeMigrator{upErr: migrate.ErrNoChange}
	if err := upCommand(m, nil, testLogger(), &bytes.Buffer{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	m.upErr = errors.New("dirty database")
	if err := upCommand(m, nil, testLogger(), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error to surface")
	}
}

func TestDownCommand_Steps(t *testing.T) {
	m := &fakeMigrator{}
	if err := downCommand(m, nil, testLogger(), &bytes.Buffer{}); err != nil {
		t.Fatalf("down: %v", err)
	}
	if m.steps != -1 {
		t.Fatalf("expected one step down, got %d", m.steps)
	}

	if err := downCommand(m, []string{"3"}, testLogger(), &bytes.Buffer{}); err != nil {
		t.Fatalf("down 3: %v", err)
	}
	if m.steps != -3 {
		t.Fatalf("expected three steps down, got %d", m.steps)
	}

	if err := downCommand(m, []string{"0"}, testLogger(), &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	m := &fakeMigrator{versionEr: migrate.ErrNilVersion}
	if err := versionCommand(m, nil, testLogger(), &out); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := out.String(); got != "version: none\ndirty: false\n" {
		t.Fatalf("unexpected output: %q", got)
	}

	out.Reset()
	m = &fakeMigrator{version: 1790000000, dirty: true}
	if err := versionCommand(m, nil, testLogger(), &out); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := out.String(); got != "version: 1790000000\ndirty: true\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestForceAndGotoRequireVersion(t *testing.T) {
	m := &fakeMigrator{}
	if err := forceCommand(m, nil, testLogger(), &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := gotoCommand(m, []string{"abc"}, testLogger(), &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}

	if err := forceCommand(m, []string{"1790000000"}, testLogger(), &bytes.Buffer{}); err != nil {
		t.Fatalf("force: %v", err)
	}
	if err := gotoCommand(m, []string{"1790000000"}, testLogger(), &bytes.Buffer{}); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if m.forced != 1790000000 || m.target != 1790000000 {
		t.Fatalf("unexpected versions: forced=%d target=%d", m.forced, m.target)
	}
}

func TestRun_RejectsUnknownCommand(t *testing.T) {
	if err := run([]string{"sideways"}, testLogger(), &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(nil, testLogger(), &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
