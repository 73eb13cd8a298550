// Package main is the entry point for the copydash terminal client.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/copydash/client/internal/cache"
	"github.com/copydash/client/internal/config"
	"github.com/copydash/client/internal/ingest"
	"github.com/copydash/client/internal/store"
	"github.com/copydash/client/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	slog.Info("copydash starting", "version", "1.0.0")
	slog.Info("config_loaded",
		"server_url", cfg.ServerURL,
		"socket_url", cfg.SocketURL(),
		"status_poll", cfg.StatusPollInterval,
		"balance_poll", cfg.BalancePollInterval,
		"keepalive", cfg.KeepaliveInterval,
		"reconnect_base", cfg.ReconnectBase,
		"reconnect_cap", cfg.ReconnectCap,
		"category", cfg.Category,
		"enable_tui", cfg.EnableTUI,
		"cache_path", cfg.CachePath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	st := store.New()

	// Cached snapshots paint the dashboard before the first fetch.
	snapCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		slog.Warn("cache_unavailable", "path", cfg.CachePath, "error", err)
	} else {
		snapCache.Restore(st)
		cacheChanges := make(chan store.Domain, ui.ChangeBuffer)
		st.Subscribe(cacheChanges)

		cacheDone := make(chan struct{})
		go func() {
			snapCache.Run(ctx, cacheChanges, st)
			close(cacheDone)
		}()
		// The writer must drain before the database closes under it.
		defer func() {
			<-cacheDone
			snapCache.Close()
		}()
	}

	api := ingest.NewAPIClient(cfg.ServerURL)
	poller := ingest.NewPoller(api, st, cfg.StatusPollInterval, cfg.BalancePollInterval, cfg.Category)
	router := ingest.NewRouter(st, poller)
	listener := ingest.NewListener(cfg.SocketURL(), st, router, cfg.ReconnectBase, cfg.ReconnectCap)
	keepalive := ingest.NewKeepalive(listener, cfg.KeepaliveInterval)

	poller.Start(ctx)
	listener.Start(ctx)
	keepalive.Start(ctx)

	slog.Info("client_started",
		"status", "synchronizing",
		"tui_enabled", cfg.EnableTUI,
	)

	if cfg.EnableTUI {
		app := ui.NewApp(st, poller, cfg.Category, cfg.UIRefreshRate)

		go func() {
			if err := app.Run(); err != nil {
				slog.Error("tui_error", "error", err)
			}
			cancel()
		}()

		select {
		case sig := <-sigChan:
			slog.Info("shutdown_signal_received", "signal", sig.String())
			app.Stop()
		case <-ctx.Done():
			app.Stop()
		}
	} else {
		// Headless mode, just keep syncing until signalled.
		sig := <-sigChan
		slog.Info("shutdown_signal_received", "signal", sig.String())
	}

	cancel()

	slog.Info("shutting_down")
	keepalive.Stop()
	listener.Stop()
	poller.Stop()

	slog.Info("shutdown_complete")
}

// setupLogger creates a structured logger with the configured level.
// When the TUI owns the terminal, log output goes to a rotating file
// instead of stdout.
func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.EnableTUI {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
		}
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format("2006-01-02 15:04:05"))
				}
			}
			return a
		},
	}

	return slog.New(slog.NewTextHandler(out, opts))
}
