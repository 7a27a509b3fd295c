package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/matchday-preview/internal/config"
	"github.com/riskibarqy/matchday-preview/internal/domain/article"
	"github.com/riskibarqy/matchday-preview/internal/domain/league"
	"github.com/riskibarqy/matchday-preview/internal/domain/match"
	"github.com/riskibarqy/matchday-preview/internal/domain/user"
	"github.com/riskibarqy/matchday-preview/internal/domain/workflow"
	"github.com/riskibarqy/matchday-preview/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday-preview/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchday-preview/internal/platform/logging"
	"github.com/riskibarqy/matchday-preview/internal/platform/pgdsn"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type repositories struct {
	leagues   league.Repository
	matches   match.Repository
	users     user.Repository
	articles  article.Repository
	dispatch  workflow.Repository
	closeFunc func() error
}

func openRepositories(ctx context.Context, cfg config.Config, adminPasswordHash string, logger *logging.Logger) (repositories, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		var users []user.User
		if adminPasswordHash != "" {
			users = memory.SeedUsers(adminPasswordHash)
		}
		logger.Info("using in-memory storage", "seeded_users", len(users))
		return repositories{
			leagues:   memory.NewLeagueRepository(memory.SeedLeagues()),
			matches:   memory.NewMatchRepository(memory.SeedMatches(time.Now())),
			users:     memory.NewUserRepository(users),
			articles:  memory.NewArticleRepository(),
			dispatch:  memory.NewDispatchRepository(),
			closeFunc: func() error { return nil },
		}, nil
	case config.StorageDriverPostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		if adminPasswordHash != "" {
			if err := postgres.BootstrapSeed(ctx, db, adminPasswordHash, time.Now()); err != nil {
				_ = db.Close()
				return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		logger.Info("using postgres storage", "db_name", pgdsn.Resolve(cfg.DBURL, false).Name)
		return repositories{
			leagues:   postgres.NewLeagueRepository(db),
			matches:   postgres.NewMatchRepository(db),
			users:     postgres.NewUserRepository(db),
			articles:  postgres.NewArticleRepository(db),
			dispatch:  postgres.NewDispatchRepository(db),
			closeFunc: db.Close,
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	target := pgdsn.Resolve(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", target.DSN,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(target.Name),
		otelsql.WithQueryFormatter(pgdsn.SpanQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
