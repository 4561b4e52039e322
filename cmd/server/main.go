package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/members/internal/config"
	"github.com/JonMunkholm/members/internal/core"
	_ "github.com/JonMunkholm/members/internal/core/entities" // register importable entities
	"github.com/JonMunkholm/members/internal/events"
	"github.com/JonMunkholm/members/internal/logging"
	"github.com/JonMunkholm/members/internal/password"
	"github.com/JonMunkholm/members/internal/store/postgres"
	"github.com/JonMunkholm/members/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		slog.Info("schema migrated")
	}

	bus, err := events.Open(cfg.Events, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			slog.Warn("close event bus", "error", err)
		}
	}()

	if bus.Subscriber != nil {
		if err := events.RunAuditLog(ctx, bus.Subscriber, bus.Topic, slog.Default()); err != nil {
			return err
		}
	}

	opts := []core.Option{core.WithPasswordHasher(password.NewBcrypt(cfg.Import.BcryptCost))}
	if pub := bus.EventPublisher(); pub != nil {
		opts = append(opts, core.WithEventPublisher(pub))
	}

	service, err := core.NewService(postgres.New(pool), cfg.Import, opts...)
	if err != nil {
		return err
	}
	slog.Info("entities registered", "count", core.Count())

	server := web.NewServer(service, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if status := service.Limiter().Status(); status.Active > 0 {
		slog.Info("waiting for imports to complete", "active", status.Active)
		if err := service.WaitForImports(shutdownCtx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		} else {
			slog.Info("all imports completed")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
