package main

import (
	"context"
	"fmt"

	"todo-api/internal/audit"
	"todo-api/internal/config"
	"todo-api/internal/observability/jsonlog"
	"todo-api/internal/retry"
	"todo-api/internal/store/filestore"
	"todo-api/internal/store/memorystore"
	"todo-api/internal/store/mongostore"
	"todo-api/internal/store/sqlstore"
	"todo-api/internal/todo"
)

type pingStore interface {
	todo.Store
	PingContext(ctx context.Context) error
}

type backend struct {
	store pingStore
	close func() error
}

// openStore builds the configured backend. Network stores are retried so
// the service can start alongside its database.
func openStore(ctx context.Context, cfg config.Config, logger *jsonlog.Logger) (backend, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		return backend{store: memorystore.NewTodoStore(), close: noop}, nil

	case config.StoreFile:
		st, err := filestore.New(cfg.FilePath)
		if err != nil {
			return backend{}, fmt.Errorf("open file store: %w", err)
		}
		return backend{store: st, close: noop}, nil

	case config.StoreSQLite, config.StorePostgres:
		d, _ := sqlstore.DialectByName(cfg.Store)
		var st *sqlstore.Store
		err := connect(ctx, cfg, logger, func(ctx context.Context) error {
			var err error
			st, err = sqlstore.Open(ctx, d, cfg.DBURL)
			return err
		})
		if err != nil {
			return backend{}, fmt.Errorf("open %s store: %w", d.Name, err)
		}
		return backend{store: st, close: st.Close}, nil

	case config.StoreMongo:
		var st *mongostore.Store
		err := connect(ctx, cfg, logger, func(ctx context.Context) error {
			var err error
			st, err = mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
			return err
		})
		if err != nil {
			return backend{}, fmt.Errorf("open mongo store: %w", err)
		}
		return backend{store: st, close: func() error { return st.Disconnect(context.Background()) }}, nil
	}
	return backend{}, fmt.Errorf("unknown store %q", cfg.Store)
}

func connect(ctx context.Context, cfg config.Config, logger *jsonlog.Logger, open func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, cfg.ConnectAttempts, retry.DefaultBackoff(), func(ctx context.Context) error {
		attempt++
		err := open(ctx)
		if err != nil {
			logger.Warn("store_connect_failed", map[string]any{
				"store":   cfg.Store,
				"attempt": attempt,
				"err":     err,
			})
		}
		return err
	})
}

// openAuditor returns a Redis recorder when redis_addr is set.
func openAuditor(ctx context.Context, cfg config.Config, logger *jsonlog.Logger) (todo.Auditor, func() error) {
	if cfg.RedisAddr == "" {
		return audit.Nop{}, func() error { return nil }
	}
	rec := audit.NewRedisRecorder(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.AuditTTL, cfg.AuditPrefix)
	if err := rec.PingContext(ctx); err != nil {
		// Audit is best effort; keep serving and let each write log its failure.
		logger.Warn("audit_redis_unreachable", map[string]any{"addr": cfg.RedisAddr, "err": err})
	}
	return rec, rec.Close
}
