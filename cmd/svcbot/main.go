package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	svcbot "github.com/axondata/go-svcbot"
	"github.com/joho/godotenv"
	"vawter.tech/stopper"
)

func main() {
	configPath := flag.String("config", "svcbot.yaml", "path to the bot configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Optional .env file next to the binary, same surface as plain env vars.
	_ = godotenv.Load()

	cfg, err := svcbot.LoadConfig(*configPath)
	if err != nil {
		logger.Error("loading config failed", "error", err)
		os.Exit(1)
	}

	sup, err := svcbot.NewSupervisor(cfg.SupervisorURL, svcbot.WithSupervisorLogger(logger))
	if err != nil {
		logger.Error("connecting to supervisord failed", "url", cfg.SupervisorURL, "error", err)
		os.Exit(1)
	}
	defer func() { _ = sup.Close() }()

	transport, err := svcbot.NewTelegramTransport(cfg.BotToken, svcbot.WithTelegramLogger(logger))
	if err != nil {
		logger.Error("connecting to telegram failed", "error", err)
		os.Exit(1)
	}

	opts := []svcbot.DispatcherOption{svcbot.WithDispatcherLogger(logger)}
	if cfg.SnapshotPath != "" {
		opts = append(opts, svcbot.WithSnapshotWriter(svcbot.NewSnapshotWriter(cfg.SnapshotPath)))
	}
	dispatcher := svcbot.NewDispatcher(sup, transport, cfg.AdminChatID, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A config change shuts the daemon down cleanly; the supervisor that
	// runs the bot restarts it with the fresh settings.
	watchCleanup, err := svcbot.WatchConfig(runCtx, *configPath, svcbot.DefaultWatchDebounce, logger, func() {
		logger.Info("config changed, shutting down for restart")
		cancel()
	})
	if err != nil {
		logger.Warn("config watch unavailable", "path", *configPath, "error", err)
	} else {
		defer func() { _ = watchCleanup() }()
	}

	sctx := stopper.WithContext(runCtx)

	sctx.Go(func(_ *stopper.Context) error {
		return transport.Listen(runCtx, dispatcher)
	})
	sctx.Go(func(_ *stopper.Context) error {
		return dispatcher.Run(runCtx)
	})

	if cfg.HealthAddr != "" {
		srv := &http.Server{
			Addr:         cfg.HealthAddr,
			Handler:      svcbot.NewHealthRouter(cfg.SnapshotPath, logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		sctx.Go(func(_ *stopper.Context) error {
			logger.Info("health endpoint listening", "addr", cfg.HealthAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		sctx.Go(func(_ *stopper.Context) error {
			<-runCtx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("svcbot started", "version", svcbot.Version, "supervisor", cfg.SupervisorURL)

	if err := sctx.Wait(); err != nil {
		logger.Error("shutdown finished with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
