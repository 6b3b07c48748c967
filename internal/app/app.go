// Package app wires configuration, storage, event sinks and services for the
// proptic binaries.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andalize/proptic/common/database"
	commonmqtt "github.com/andalize/proptic/common/mqtt"
	commonredis "github.com/andalize/proptic/common/redis"
	"github.com/andalize/proptic/internal/config"
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/migrations"
	"github.com/andalize/proptic/internal/repository"
	"github.com/andalize/proptic/internal/service"

	"go.uber.org/zap"
)

// ErrNoDatabase is returned by operations that need PostgreSQL when the app
// runs on in-memory repositories.
var ErrNoDatabase = errors.New("database is not configured")

// App holds the long lived dependencies of a process.
type App struct {
	Config    *config.Config
	DB        *sql.DB // nil on in-memory repositories
	Repos     *repository.Repositories
	Services  *service.Services
	Publisher events.Publisher

	redis  *commonredis.Client
	mqtt   *commonmqtt.Client
	logger *zap.Logger
}

// New connects to PostgreSQL when enabled and falls back to in-memory
// repositories if the connection fails. Event sink clients are only created
// for the configured sink.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	if cfg.DBEnabled {
		if db, err := database.NewPostgresDB(context.Background(), &cfg.Database); err == nil {
			a.DB = db
			logger.Info("DB enabled for proptic")
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory", zap.Error(err))
		}
	}
	if a.DB != nil {
		a.Repos = repository.NewPostgresRepositories(a.DB)
	} else {
		a.Repos = repository.NewMemoryRepositories()
	}

	switch cfg.Events.Sink {
	case events.SinkRedis:
		a.redis = commonredis.NewRedisClient(&cfg.Redis)
	case events.SinkMQTT:
		client, err := commonmqtt.NewClient(&cfg.MQTT)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect event sink: %w", err)
		}
		a.mqtt = client
	}
	pub, err := events.NewPublisher(cfg.Events, a.redis, a.mqtt, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Publisher = pub

	tokens := service.NewTokenIssuer(cfg.Auth)
	a.Services = service.NewServices(a.Repos, tokens, events.NewEmitter(pub, logger.Named("events")), logger)
	return a, nil
}

// Migrate applies pending migrations and, when configured, seeds the role
// catalog.
func (a *App) Migrate(ctx context.Context) error {
	if a.DB == nil {
		return ErrNoDatabase
	}
	if err := migrations.Apply(ctx, a.DB, a.logger); err != nil {
		return err
	}
	if !a.Config.SeedRoles {
		return nil
	}
	_, err := a.SeedRoles(ctx)
	return err
}

// SeedRoles inserts missing default roles and returns how many were added.
func (a *App) SeedRoles(ctx context.Context) (int, error) {
	if a.DB == nil {
		return 0, ErrNoDatabase
	}
	n, err := migrations.SeedRoles(ctx, a.DB)
	if err != nil {
		return n, err
	}
	a.logger.Info("Roles seeded", zap.Int("created", n))
	return n, nil
}

// Ping checks the database and the event sink connection. In-memory
// repositories are always healthy.
func (a *App) Ping(ctx context.Context) error {
	if a.DB != nil {
		if err := a.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if a.redis != nil {
		if err := commonredis.Ping(ctx, a.redis); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if a.mqtt != nil && !a.mqtt.IsConnected() {
		return errors.New("mqtt: not connected")
	}
	return nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	} else if a.mqtt != nil {
		a.mqtt.Disconnect()
	}
	if a.redis != nil {
		_ = commonredis.Close(a.redis)
	}
	_ = database.Close(a.DB)
}
