package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/chatbridge/core/bridge"
	"github.com/leofalp/chatbridge/core/bridge/middleware"
	"github.com/leofalp/chatbridge/core/directory"
	"github.com/leofalp/chatbridge/core/metrics"
	"github.com/leofalp/chatbridge/core/session"
	"github.com/leofalp/chatbridge/core/settings"
	"github.com/leofalp/chatbridge/core/transport"
	"github.com/leofalp/chatbridge/providers/ai"
	"github.com/leofalp/chatbridge/providers/memory/inmemory"
	"github.com/leofalp/chatbridge/providers/observability/slogobs"
)

// app holds the long-lived pieces shared by every command: one settings
// store, one HTTP client, one conversation store and one metrics registry.
type app struct {
	settings *settings.FileStore
	logger   *slog.Logger
	level    slog.Level
	observer *slogobs.Observer
	client   *http.Client
	metrics  *metrics.Collector
	memory   *inmemory.Store
}

// newApp loads the settings file and wires logging, transport and metrics.
// Logs are written to logOut.
func newApp(logOut io.Writer) (*app, error) {
	store, err := settings.NewFileStore(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	level := slogobs.LevelFromEnv()
	if logLevel != "" {
		if level, err = slogobs.ParseLevel(logLevel); err != nil {
			return nil, err
		}
	}
	format := slogobs.FormatFromEnv()
	if logFormat != "" {
		if format, err = slogobs.ParseFormat(logFormat); err != nil {
			return nil, err
		}
	}

	logger := slog.New(slogobs.NewHandler(logOut, format, level))

	return &app{
		settings: store,
		logger:   logger,
		level:    level,
		observer: slogobs.New(logger),
		client:   transport.NewClient(transport.FromSettings(store.Snapshot())...),
		metrics:  metrics.NewCollector(),
		memory:   inmemory.New(),
	}, nil
}

// middlewares returns the bridge middleware stack: logging outermost, then
// the optional retry, then a per-attempt timeout. A failed stream is only
// retried when the user asked for it with --retries.
func (a *app) middlewares(s settings.Settings) []bridge.Middleware {
	detail := middleware.LogLevelStandard
	if a.level <= slogobs.LevelTrace {
		detail = middleware.LogLevelVerbose
	}

	stack := []bridge.Middleware{middleware.NewLoggingMiddleware(a.logger, detail)}
	if retries > 0 {
		stack = append(stack, middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: retries}))
	}
	return append(stack, middleware.NewTimeoutMiddleware(s.ResourceTimeout))
}

// newController builds a controller for kind from a settings snapshot.
func (a *app) newController(s settings.Settings, kind ai.ProviderKind, groupID string, annotate bool) (*session.Controller, error) {
	return session.New(s.ConnectionConfig(kind),
		session.WithHTTPClient(a.client),
		session.WithStore(a.memory),
		session.WithGroupID(groupID),
		session.WithObserver(a.observer),
		session.WithMetrics(a.metrics),
		session.WithAnnotations(annotate),
		session.WithMiddleware(a.middlewares(s)...),
	)
}

func (a *app) directory() *directory.Directory {
	return directory.New(a.client, directory.WithMetrics(a.metrics))
}

// resolveProvider parses name, falling back to the selected provider.
func resolveProvider(s settings.Settings, name string) (ai.ProviderKind, error) {
	if name == "" {
		return s.Provider(), nil
	}
	return ai.ParseProviderKind(name)
}

// resolveModel returns requested, else the selected model when it belongs
// to kind, else the first model the provider lists.
func (a *app) resolveModel(ctx context.Context, s settings.Settings, kind ai.ProviderKind, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if s.SelectedModel != "" && s.Provider() == kind {
		return s.SelectedModel, nil
	}

	models := a.directory().ListModels(ctx, s.ConnectionConfig(kind))
	if len(models) == 0 {
		return "", fmt.Errorf("no model selected and %s listed none; pass --model", kind.DisplayName())
	}
	return models[0], nil
}

// serveMetrics exposes the collector on addr until the returned function is
// called. An empty addr serves nothing.
func (a *app) serveMetrics(addr string) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("Serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
