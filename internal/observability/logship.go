package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday-preview/internal/config"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	shipQueueSize     = 1024
	shipBatchSize     = 50
	shipFlushInterval = time.Second
)

// startLogShipping tees records at or above BETTERSTACK_MIN_LEVEL into Better
// Stack. stdout keeps receiving everything.
func (t *Telemetry) startLogShipping(cfg config.Config) error {
	if !cfg.BetterStackEnabled {
		t.Logger.Info("betterstack disabled")
		return nil
	}

	endpoint := strings.TrimSpace(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return crerr.New("betterstack endpoint is empty")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	sink := newLogSink(endpoint, strings.TrimSpace(cfg.BetterStackToken), cfg.BetterStackTimeout)
	shipped := zapcore.NewCore(zapcore.NewJSONEncoder(logging.EncoderConfig()), sink, cfg.BetterStackMinLevel)
	t.Logger = logging.FromZap(t.Logger.Zap().WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, shipped)
	})))
	t.Logger.Info("betterstack enabled", "endpoint", endpoint, "min_level", cfg.BetterStackMinLevel.String())

	logger := t.Logger
	t.onShutdown("betterstack", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
		}
		if err := sink.Close(ctx); err != nil {
			return err
		}
		// stdout cannot be fsynced on most platforms
		_ = logger.Sync()
		return nil
	})
	return nil
}

// logSink is a zapcore.WriteSyncer that batches encoded records and posts
// each batch as one JSON array. Writes never block: a full queue drops the
// record and reports the drop count on stderr.
type logSink struct {
	endpoint string
	token    string
	client   *http.Client
	interval time.Duration

	mu      sync.RWMutex
	closed  bool
	lines   chan []byte
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

func newLogSink(endpoint, token string, timeout time.Duration) *logSink {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	s := &logSink{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		interval: shipFlushInterval,
		lines:    make(chan []byte, shipQueueSize),
		done:     make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *logSink) Write(p []byte) (int, error) {
	line := bytes.TrimSpace(p)
	if len(line) == 0 {
		return len(p), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return len(p), nil
	}
	select {
	case s.lines <- bytes.Clone(line):
	default:
		if n := s.dropped.Add(1); n == 1 || n%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack queue full, dropped=%d\n", n)
		}
	}
	return len(p), nil
}

func (s *logSink) Sync() error { return nil }

func (s *logSink) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	pending := 0

	flush := func() {
		if pending == 0 {
			return
		}
		_ = buf.WriteByte(']')
		s.post(buf.B)
		buf.Reset()
		pending = 0
	}

	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				flush()
				return
			}
			sep := byte(',')
			if pending == 0 {
				sep = '['
			}
			_ = buf.WriteByte(sep)
			_, _ = buf.Write(line)
			pending++
			if pending >= shipBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *logSink) post(batch []byte) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.endpoint, bytes.NewReader(batch))
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack request: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack send: %v\n", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "betterstack send: status %d\n", resp.StatusCode)
	}
}

// Close stops accepting records and waits for the final batch to be posted.
func (s *logSink) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.lines)
		s.mu.Unlock()
	})

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return crerr.Wrap(ctx.Err(), "drain betterstack queue")
	}
}
