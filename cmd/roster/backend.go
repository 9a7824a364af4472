package main

import (
	"context"
	"errors"

	"github.com/Roupies/holbertonschool-web-back-end/config"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/infrastructure/persistence/csvfile"
	"github.com/Roupies/holbertonschool-web-back-end/internal/infrastructure/persistence/postgres"
	"github.com/Roupies/holbertonschool-web-back-end/internal/infrastructure/persistence/redis"
	"github.com/Roupies/holbertonschool-web-back-end/internal/infrastructure/persistence/sqlite"
	"github.com/Roupies/holbertonschool-web-back-end/internal/interface/http/handlers"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/circuitbreaker"
	"github.com/Roupies/holbertonschool-web-back-end/pkg/logger"
)

// errReadOnly is returned by commands that need a writable store when the
// roster is served from CSV.
var errReadOnly = errors.New("the CSV roster is read-only; set DATABASE_URL or ROSTER_SQLITE")

// backend is the set of stores selected by configuration.
type backend struct {
	kind   string
	source roster.Source
	grades roster.GradeSource

	// Nil for the CSV backend.
	repo roster.Repository
	tags roster.TagRepository

	// Nil when Redis is disabled or the graded cache feature is off.
	cache roster.Cache

	pg       *postgres.Connection
	checkers []handlers.Checker
	closers  []func()
}

// openBackend connects to the configured storage. Postgres wins over SQLite,
// which wins over CSV. Redis is optional: a failed connection is logged and
// the service runs uncached.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	b := &backend{}

	switch {
	case cfg.Database.URL != "":
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		if cfg.Database.MaxOpenConns > 0 {
			pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
		}
		if cfg.Database.MaxIdleConns > 0 {
			pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
		}
		if cfg.Database.ConnMaxLifetime > 0 {
			pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		}
		if cfg.Database.ConnMaxIdleTime > 0 {
			pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
		}

		conn, err := postgres.NewConnection(ctx, pgCfg, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, conn.Close)
		b.checkers = append(b.checkers, conn)
		b.pg = conn

		students := postgres.NewStudentRepository(conn)
		b.kind = "postgres"
		b.source, b.grades, b.repo = students, students, students
		b.tags = postgres.NewTagRepository(conn)

	case cfg.Roster.SQLitePath != "":
		store, err := sqlite.Open(cfg.Roster.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.checkers = append(b.checkers, store)

		b.kind = "sqlite"
		b.source, b.grades, b.repo, b.tags = store, store, store, store

	default:
		src := csvfile.NewSource(cfg.Roster.DatabasePath, cfg.Roster.GradesPath)
		b.kind = "csv"
		b.source, b.grades = src, src
	}

	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureGradedCache, "") {
		b.openCache(ctx, cfg, log)
	}

	log.Debug("roster backend ready",
		logger.String("store", b.kind),
		logger.Bool("cache", b.cache != nil),
	)
	return b, nil
}

func (b *backend) openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	redisCfg := redis.DefaultConfig()
	redisCfg.URL = cfg.Redis.URL
	if cfg.Redis.Host != "" {
		redisCfg.Host = cfg.Redis.Host
	}
	if cfg.Redis.Port > 0 {
		redisCfg.Port = cfg.Redis.Port
	}
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	if cfg.Redis.PoolSize > 0 {
		redisCfg.PoolSize = cfg.Redis.PoolSize
	}
	if cfg.Redis.MinIdleConns > 0 {
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	}

	cache, err := redis.NewCache(ctx, redisCfg, log)
	if err != nil {
		log.Warn("redis unavailable, graded lookups will not be cached", logger.Err(err))
		return
	}
	b.closers = append(b.closers, func() { _ = cache.Close() })
	b.checkers = append(b.checkers, cache)
	breaker := circuitbreaker.CacheBreaker(redis.IsMiss, func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})
	b.cache = redis.NewRosterCache(cache, breaker)
}

// writable returns the repository or errReadOnly.
func (b *backend) writable() (roster.Repository, error) {
	if b.repo == nil {
		return nil, errReadOnly
	}
	return b.repo, nil
}

// Close releases every store in reverse order of opening.
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}
