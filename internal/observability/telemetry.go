package observability

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-preview/internal/config"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

type stopFunc func(context.Context) error

type stopper struct {
	name string
	stop stopFunc
}

// Telemetry owns every exporter the API process starts: the Better Stack log
// sink, Uptrace tracing, Pyroscope and the pprof listener. Logger is the
// logger the rest of the process should use.
type Telemetry struct {
	Logger *logging.Logger

	pprofAddr string
	stoppers  []stopper
}

// Setup starts the exporters enabled in cfg. On error everything already
// started is stopped again.
func Setup(cfg config.Config, base *logging.Logger) (*Telemetry, error) {
	if base == nil {
		base = logging.Default()
	}
	t := &Telemetry{Logger: base}

	if err := t.startLogShipping(cfg); err != nil {
		return nil, t.abort(err)
	}
	t.startTracing(cfg)
	if err := t.startPyroscope(cfg); err != nil {
		return nil, t.abort(err)
	}
	if err := t.startPprof(cfg); err != nil {
		return nil, t.abort(err)
	}
	return t, nil
}

func (t *Telemetry) onShutdown(name string, fn stopFunc) {
	t.stoppers = append(t.stoppers, stopper{name: name, stop: fn})
}

// Shutdown stops exporters in reverse start order so the log sink drains last.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs error
	for i := len(t.stoppers) - 1; i >= 0; i-- {
		s := t.stoppers[i]
		if err := s.stop(ctx); err != nil {
			errs = crerr.CombineErrors(errs, crerr.Wrapf(err, "stop %s", s.name))
		}
	}
	t.stoppers = nil
	return errs
}

func (t *Telemetry) abort(err error) error {
	if stopErr := t.Shutdown(context.Background()); stopErr != nil {
		return crerr.CombineErrors(err, stopErr)
	}
	return err
}

func (t *Telemetry) startTracing(cfg config.Config) {
	if !cfg.UptraceEnabled || strings.TrimSpace(cfg.UptraceDSN) == "" {
		logging.SetMirror(nil)
		t.Logger.Info("uptrace disabled", "enabled", cfg.UptraceEnabled, "dsn_set", strings.TrimSpace(cfg.UptraceDSN) != "")
		return
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	if cfg.UptraceLogsEnabled {
		logging.SetMirror(newOTelLogMirror(cfg.ServiceVersion, quietRequestPaths...))
	}
	t.Logger.Info("uptrace enabled", "service_name", cfg.ServiceName, "logs_enabled", cfg.UptraceLogsEnabled)

	t.onShutdown("uptrace", func(ctx context.Context) error {
		logging.SetMirror(nil)
		return uptrace.Shutdown(ctx)
	})
}
