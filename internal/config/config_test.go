package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_DevDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"APP_ENV":                 EnvDev,
		"JWT_SECRET":              "",
		"WORKFLOW_MODE":           "",
		"DASHBOARD_CACHE_TTL":     "",
		"DASHBOARD_CACHE_BACKEND": "",
		"STORAGE_DRIVER":          "",
		"SWAGGER_ENABLED":         "",
		"SEED_ADMIN_PASSWORD":     "",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.DashboardCacheTTL)
	assert.Equal(t, CacheBackendMemory, cfg.DashboardCacheBackend)
	assert.Equal(t, WorkflowModeNoop, cfg.WorkflowMode)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, devAdminPassword, cfg.SeedAdminPassword)
	assert.Equal(t, "matchday-preview-api", cfg.ServiceName)
	assert.Equal(t, cfg.ServiceName, cfg.PyroscopeAppName)
	assert.True(t, cfg.SwaggerEnabled)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_ProdDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"APP_ENV":                   EnvProd,
		"JWT_SECRET":                testSecret,
		"ANALYSIS_CALLBACK_API_KEY": "key",
		"SWAGGER_ENABLED":           "",
		"SEED_ADMIN_PASSWORD":       "",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.SwaggerEnabled)
	assert.Empty(t, cfg.SeedAdminPassword)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown env", map[string]string{"APP_ENV": "moon"}, `invalid APP_ENV "moon"`},
		{"prod without jwt secret", map[string]string{"APP_ENV": EnvProd, "JWT_SECRET": "", "ANALYSIS_CALLBACK_API_KEY": "key"}, "JWT_SECRET must be at least 32 characters"},
		{"prod without callback key", map[string]string{"APP_ENV": EnvProd, "JWT_SECRET": testSecret, "ANALYSIS_CALLBACK_API_KEY": ""}, "ANALYSIS_CALLBACK_API_KEY is required outside dev"},
		{"unknown workflow mode", map[string]string{"WORKFLOW_MODE": "carrier-pigeon"}, `invalid WORKFLOW_MODE "carrier-pigeon"`},
		{"webhook without url", map[string]string{"WORKFLOW_MODE": WorkflowModeWebhook, "WORKFLOW_WEBHOOK_URL": ""}, "WORKFLOW_WEBHOOK_URL is required"},
		{"qstash without target", map[string]string{"WORKFLOW_MODE": WorkflowModeQStash, "QSTASH_TOKEN": "token", "QSTASH_TARGET_URL": ""}, "QSTASH_TARGET_URL is required"},
		{"redis without url", map[string]string{"DASHBOARD_CACHE_BACKEND": CacheBackendRedis, "REDIS_URL": ""}, "REDIS_URL is required"},
		{"uptrace without dsn", map[string]string{"UPTRACE_ENABLED": "true", "UPTRACE_DSN": "", "OTEL_EXPORTER_OTLP_HEADERS": ""}, "UPTRACE_DSN is required"},
		{"bad bool", map[string]string{"CACHE_ENABLED": "sometimes"}, "parse CACHE_ENABLED"},
		{"zero pool", map[string]string{"DB_MAX_OPEN_CONNS": "0"}, "DB_MAX_OPEN_CONNS must be >= 1"},
		{"negative ttl", map[string]string{"CACHE_TTL": "-1s"}, "CACHE_TTL must be > 0"},
		{"bad duration", map[string]string{"WORKFLOW_TIMEOUT": "soon"}, "parse WORKFLOW_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			setEnv(t, tt.env)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ParsesOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"APP_ENV":                           EnvDev,
		"WORKFLOW_MODE":                     "WEBHOOK",
		"WORKFLOW_WEBHOOK_URL":              "https://n8n.local/webhook/analyze",
		"WORKFLOW_TIMEOUT":                  "3s",
		"CORS_ALLOWED_ORIGINS":              " https://a.example.com, ,https://b.example.com ",
		"BETTERSTACK_ENABLED":               "true",
		"BETTERSTACK_ENDPOINT":              "in.logs.betterstack.com",
		"BETTERSTACK_MIN_LEVEL":             "warn",
		"BETTERSTACK_TIMEOUT":               "4s",
		"ANALYSIS_CALLBACK_BASE_URL":        "https://api.example.com/",
		"UPTRACE_DSN":                       "",
		"OTEL_EXPORTER_OTLP_HEADERS":        `uptrace-dsn=https://token@api.uptrace.dev`,
		"QSTASH_RETRIES":                    "0",
		"WORKFLOW_CIRCUIT_ENABLED":          "false",
		"ARTICLE_SYNC_WORKERS":              "8",
		"APP_LOG_LEVEL":                     "DEBUG",
		"DB_DISABLE_PREPARED_BINARY_RESULT": "false",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, WorkflowModeWebhook, cfg.WorkflowMode)
	assert.Equal(t, 3*time.Second, cfg.WorkflowTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, logging.LevelWarn, cfg.BetterStackMinLevel)
	assert.Equal(t, 4*time.Second, cfg.BetterStackTimeout)
	assert.Equal(t, "https://api.example.com", cfg.AnalysisCallbackBaseURL)
	assert.Equal(t, "https://token@api.uptrace.dev", cfg.UptraceDSN)
	assert.Zero(t, cfg.QStashRetries)
	assert.False(t, cfg.WorkflowCircuitEnabled)
	assert.Equal(t, 8, cfg.ArticleSyncWorkers)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
	assert.False(t, cfg.DBDisablePreparedBinary)
}

func TestDSNFromOTLPHeaders(t *testing.T) {
	assert.Equal(t, "https://token@api.uptrace.dev?grpc=4317",
		dsnFromOTLPHeaders(`foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`))
	assert.Empty(t, dsnFromOTLPHeaders("foo=bar"))
	assert.Empty(t, dsnFromOTLPHeaders(""))
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		t.Setenv("ENV_PATH", filepath.Join(t.TempDir(), "absent.env"))
		require.NoError(t, LoadDotEnv(".env"))
	})

	t.Run("values are exported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("MATCHDAY_DOTENV_PROBE=loaded\n"), 0o600))
		t.Setenv("ENV_PATH", path)
		t.Setenv("MATCHDAY_DOTENV_PROBE", "")
		require.NoError(t, os.Unsetenv("MATCHDAY_DOTENV_PROBE"))

		require.NoError(t, LoadDotEnv(".env"))
		assert.Equal(t, "loaded", os.Getenv("MATCHDAY_DOTENV_PROBE"))
	})
}
