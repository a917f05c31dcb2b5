package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todo-api/internal/config"
	"todo-api/internal/httpapi"
	"todo-api/internal/observability/jsonlog"
	"todo-api/internal/todo"
)

func newLogger(cfg config.Config) *jsonlog.Logger {
	return jsonlog.New(os.Stdout, jsonlog.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	// Root context cancelled on SIGINT/SIGTERM
	rootCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openStore(rootCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.close(); err != nil {
			logger.Warn("store_close_failed", map[string]any{"err": err})
		}
	}()

	auditor, closeAudit := openAuditor(rootCtx, cfg, logger)
	defer closeAudit()

	svc := todo.NewService(be.store,
		todo.WithAuditor(auditor),
		todo.WithLogger(logger),
	)
	handler := httpapi.NewServer(svc, httpapi.Config{
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
		Ready:          be.store,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", map[string]any{"addr": srv.Addr, "store": cfg.Store})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-rootCtx.Done():
		logger.Info("shutdown_signal_received", nil)
	}

	// Stop accepting new requests; wait for in-flight with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", map[string]any{"err": err})
	}
	logger.Info("bye", nil)
	return nil
}

func runPing(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	be, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	if err := be.store.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s store: %w", cfg.Store, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %s store reachable\n", cfg.Store)
	return nil
}
