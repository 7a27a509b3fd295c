package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const otelLogScope = "github.com/riskibarqy/matchday-preview/internal/platform/logging"

// quietRequestPaths are polled by probes and scrapers; their access logs stay
// on stdout only.
var quietRequestPaths = []string{"/healthz", "/metrics"}

// newOTelLogMirror forwards log records to the global OpenTelemetry logger
// provider that Uptrace installs.
func newOTelLogMirror(version string, quietPaths ...string) logging.MirrorFunc {
	logger := otelglobal.Logger(otelLogScope, otellog.WithInstrumentationVersion(version))
	quiet := make(map[string]struct{}, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = struct{}{}
	}

	return func(ctx context.Context, level logging.Level, msg string, args ...any) {
		if isQuietRequest(quiet, msg, args) {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}
		severity := severityOf(level)
		if !logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
			return
		}

		var rec otellog.Record
		now := time.Now()
		rec.SetTimestamp(now)
		rec.SetObservedTimestamp(now)
		rec.SetSeverity(severity)
		rec.SetSeverityText(strings.ToUpper(level.String()))
		rec.SetEventName(msg)
		rec.SetBody(otellog.StringValue(msg))
		rec.AddAttributes(logAttributes(args)...)
		logger.Emit(ctx, rec)
	}
}

func isQuietRequest(quiet map[string]struct{}, msg string, args []any) bool {
	if msg != "http_request" || len(quiet) == 0 {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, _ := args[i].(string); key == "http_path" {
			path, _ := args[i+1].(string)
			_, ok := quiet[path]
			return ok
		}
	}
	return false
}

// logAttributes pairs slog-style key/value args. A trailing key without a
// value becomes an empty attribute.
func logAttributes(args []any) []otellog.KeyValue {
	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = fmt.Sprintf("arg_%d", i/2)
		}
		if i+1 == len(args) {
			attrs = append(attrs, otellog.Empty(key))
			break
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: logValue(args[i+1], 0)})
	}
	return attrs
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch level {
	case zapcore.DebugLevel:
		return otellog.SeverityDebug
	case zapcore.InfoLevel:
		return otellog.SeverityInfo
	case zapcore.WarnLevel:
		return otellog.SeverityWarn
	case zapcore.ErrorLevel:
		return otellog.SeverityError
	default:
		if level < zapcore.DebugLevel {
			return otellog.SeverityTrace
		}
		return otellog.SeverityFatal
	}
}

// logValue converts the value shapes this service logs. Nested containers
// stop at depth 3 and fall back to their fmt form.
func logValue(v any, depth int) otellog.Value {
	switch x := v.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(x)
	case bool:
		return otellog.BoolValue(x)
	case int:
		return otellog.IntValue(x)
	case int32:
		return otellog.Int64Value(int64(x))
	case int64:
		return otellog.Int64Value(x)
	case uint32:
		return otellog.Int64Value(int64(x))
	case float64:
		return otellog.Float64Value(x)
	case []byte:
		return otellog.BytesValue(bytesCopy(x))
	case time.Time:
		return otellog.StringValue(x.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(x.String())
	case error:
		return otellog.StringValue(x.Error())
	case fmt.Stringer:
		return otellog.StringValue(x.String())
	}
	if depth >= 3 {
		return otellog.StringValue(fmt.Sprint(v))
	}

	switch x := v.(type) {
	case []string:
		items := make([]otellog.Value, len(x))
		for i, s := range x {
			items[i] = otellog.StringValue(s)
		}
		return otellog.SliceValue(items...)
	case []any:
		items := make([]otellog.Value, len(x))
		for i, item := range x {
			items[i] = logValue(item, depth+1)
		}
		return otellog.SliceValue(items...)
	case map[string]any:
		kvs := make([]otellog.KeyValue, 0, len(x))
		for k, item := range x {
			kvs = append(kvs, otellog.KeyValue{Key: k, Value: logValue(item, depth+1)})
		}
		return otellog.MapValue(kvs...)
	case map[string]int:
		kvs := make([]otellog.KeyValue, 0, len(x))
		for k, n := range x {
			kvs = append(kvs, otellog.Int(k, n))
		}
		return otellog.MapValue(kvs...)
	}
	return otellog.StringValue(fmt.Sprint(v))
}

func bytesCopy(b []byte) []byte {
	return append([]byte(nil), b...)
}
