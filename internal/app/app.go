package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/matchday-preview/internal/config"
	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	"github.com/riskibarqy/matchday-preview/internal/infrastructure/account"
	repocache "github.com/riskibarqy/matchday-preview/internal/infrastructure/repository/cache"
	workflowinfra "github.com/riskibarqy/matchday-preview/internal/infrastructure/workflow"
	"github.com/riskibarqy/matchday-preview/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchday-preview/internal/platform/cache"
	idgen "github.com/riskibarqy/matchday-preview/internal/platform/id"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/riskibarqy/matchday-preview/internal/platform/resilience"
	"github.com/riskibarqy/matchday-preview/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

const dashboardCacheKey = "dashboard:snapshot"

// NewHTTPServer wires storage, caches, the workflow dispatcher and services
// into an HTTP server. The returned cleanup releases storage and cache
// connections and must run after the server has shut down.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	hasher := account.NewBcryptHasher(bcrypt.DefaultCost)
	adminPasswordHash := ""
	if cfg.SeedAdminPassword != "" {
		hash, err := hasher.Hash(cfg.SeedAdminPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("hash seed admin password: %w", err)
		}
		adminPasswordHash = hash
	}

	repos, err := openRepositories(ctx, cfg, adminPasswordHash, logger)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, repos.closeFunc)

	var leagueRepo league.Repository = repos.leagues
	if cfg.CacheEnabled {
		leagueRepo = repocache.NewLeagueRepository(repos.leagues, cfg.CacheTTL)
	}

	var dashboardCache usecase.SnapshotCache[usecase.Dashboard]
	switch cfg.DashboardCacheBackend {
	case config.CacheBackendRedis:
		client, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			_ = cleanup()
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		dashboardCache = repocache.NewRedisSnapshot[usecase.Dashboard](client, dashboardCacheKey, logger)
	default:
		dashboardCache = cache.NewSnapshot[usecase.Dashboard]()
	}

	tokens, err := account.NewTokenService(account.TokenConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTTTL,
	})
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("build token service: %w", err)
	}

	dispatcher, mode := newDispatcher(cfg, logger)
	ids := idgen.NewUUIDGenerator()

	articleSvc := usecase.NewArticleService(repos.articles, repos.matches, leagueRepo, ids, cfg.ArticleSyncWorkers, logger)
	analysisSvc := usecase.NewAnalysisService(
		repos.matches,
		leagueRepo,
		repos.users,
		dispatcher,
		repos.dispatch,
		articleSvc,
		ids,
		usecase.AnalysisConfig{
			CallbackBaseURL:             cfg.AnalysisCallbackBaseURL,
			RequireProcessingOnCallback: cfg.AnalysisCallbackRequireProcessing,
			DispatchTimeout:             cfg.WorkflowTimeout,
			Mode:                        mode,
		},
		logger,
	)

	handler := httpapi.NewHandler(
		usecase.NewAuthService(repos.users, hasher, tokens, logger),
		usecase.NewDashboardService(repos.matches, leagueRepo, repos.users, dashboardCache, cfg.DashboardCacheTTL, logger),
		usecase.NewLeagueService(leagueRepo, repos.matches, ids),
		usecase.NewMatchService(repos.matches, leagueRepo, ids),
		analysisSvc,
		articleSvc,
		usecase.NewUserService(repos.users, hasher, ids),
		logger,
	)
	router := httpapi.NewRouter(handler, tokens, logger, httpapi.RouterOptions{
		ServiceName:        cfg.ServiceName,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		MetricsEnabled:     cfg.MetricsEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CallbackAPIKey:     cfg.AnalysisCallbackAPIKey,
	})

	logger.Info("application wired",
		"storage_driver", cfg.StorageDriver,
		"dashboard_cache", cfg.DashboardCacheBackend,
		"workflow_mode", mode,
		"league_cache", cfg.CacheEnabled,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return server, cleanup, nil
}

func newDispatcher(cfg config.Config, logger *logging.Logger) (workflow.Dispatcher, workflow.Mode) {
	breaker := resilience.Config{
		Enabled:   cfg.WorkflowCircuitEnabled,
		Threshold: cfg.WorkflowCircuitFailureCount,
		Cooldown:  cfg.WorkflowCircuitOpenTimeout,
		Probes:    cfg.WorkflowCircuitHalfOpenMaxReq,
	}

	switch cfg.WorkflowMode {
	case config.WorkflowModeWebhook:
		return workflowinfra.NewInstrumented(workflowinfra.NewWebhookDispatcher(workflowinfra.WebhookConfig{
			URL:     cfg.WorkflowWebhookURL,
			Token:   cfg.WorkflowWebhookToken,
			Timeout: cfg.WorkflowTimeout,
			Breaker: breaker,
		}, logger), workflow.ModeWebhook), workflow.ModeWebhook
	case config.WorkflowModeQStash:
		return workflowinfra.NewInstrumented(workflowinfra.NewQStashDispatcher(workflowinfra.QStashConfig{
			BaseURL:     cfg.QStashBaseURL,
			Token:       cfg.QStashToken,
			TargetURL:   cfg.QStashTargetURL,
			TargetToken: cfg.WorkflowWebhookToken,
			Retries:     cfg.QStashRetries,
			Timeout:     cfg.WorkflowTimeout,
			Breaker:     breaker,
		}, logger), workflow.ModeQStash), workflow.ModeQStash
	default:
		return workflowinfra.NewInstrumented(workflowinfra.NewNoopDispatcher(logger), workflow.ModeNoop), workflow.ModeNoop
	}
}
