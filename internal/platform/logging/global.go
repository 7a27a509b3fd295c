package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives every record that passed the level check, including the
// args bound with With. It forwards logs to an OpenTelemetry exporter.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var (
	fallback atomic.Pointer[Logger]
	mirror   atomic.Pointer[MirrorFunc]
)

// Default returns the process logger set with SetDefault, or a no-op logger.
func Default() *Logger {
	if l := fallback.Load(); l != nil {
		return l
	}
	return NewNop()
}

func SetDefault(l *Logger) {
	fallback.Store(l)
}

// SetMirror installs fn for every logger in the process. nil removes it.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&fn)
}
