package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/matchday-preview/internal/config"
)

var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexDuration,
	pyroscope.ProfileBlockDuration,
}

func profileTags(cfg config.Config) map[string]string {
	tags := make(map[string]string, 3)
	for k, v := range map[string]string{"env": cfg.AppEnv, "service": cfg.ServiceName, "version": cfg.ServiceVersion} {
		if v != "" {
			tags[k] = v
		}
	}
	return tags
}

func (t *Telemetry) startPyroscope(cfg config.Config) error {
	if !cfg.PyroscopeEnabled {
		t.Logger.Info("pyroscope disabled")
		return nil
	}

	// mutex and block profiles are empty unless sampling is on
	runtime.SetMutexProfileFraction(5)
	runtime.SetBlockProfileRate(5)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags:              profileTags(cfg),
		ProfileTypes:      profileTypes,
	})
	if err != nil {
		return crerr.Wrap(err, "start pyroscope")
	}
	t.Logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)

	t.onShutdown("pyroscope", func(context.Context) error { return profiler.Stop() })
	return nil
}

// startPprof binds PPROF_ADDR up front so a taken port fails startup instead
// of surfacing later in a goroutine.
func (t *Telemetry) startPprof(cfg config.Config) error {
	if !cfg.PprofEnabled {
		t.Logger.Info("pprof disabled")
		return nil
	}

	ln, err := net.Listen("tcp", cfg.PprofAddr)
	if err != nil {
		return crerr.Wrapf(err, "listen pprof on %s", cfg.PprofAddr)
	}
	t.pprofAddr = ln.Addr().String()

	mux := http.NewServeMux()
	for path, h := range map[string]http.HandlerFunc{
		"":        pprof.Index,
		"cmdline": pprof.Cmdline,
		"profile": pprof.Profile,
		"symbol":  pprof.Symbol,
		"trace":   pprof.Trace,
	} {
		mux.HandleFunc("/debug/pprof/"+path, h)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger := t.Logger
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pprof server failed", "error", err)
		}
	}()
	t.Logger.Info("pprof listening", "addr", t.pprofAddr)

	t.onShutdown("pprof", srv.Shutdown)
	return nil
}
