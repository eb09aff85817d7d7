// Package gymaccess собирает приложение контроля доступа: хранилище,
// миграции, кеш, публикацию событий, сервисы и HTTP-сервер.
package gymaccess

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-access-control/internal/cache"
	"github.com/magabrotheeeer/gym-access-control/internal/config"
	"github.com/magabrotheeeer/gym-access-control/internal/events"
	"github.com/magabrotheeeer/gym-access-control/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-access-control/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-control/internal/migrations"
	accessservice "github.com/magabrotheeeer/gym-access-control/internal/services/access"
	accesslogservice "github.com/magabrotheeeer/gym-access-control/internal/services/accesslog"
	catalogservice "github.com/magabrotheeeer/gym-access-control/internal/services/catalog"
	userservice "github.com/magabrotheeeer/gym-access-control/internal/services/user"
	"github.com/magabrotheeeer/gym-access-control/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и внешние подключения приложения.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
}

// New создает приложение: подключает PostgreSQL, применяет миграции,
// поднимает Redis и RabbitMQ (последний опционален) и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = repository.CheckDatabaseReady(db); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var publisher accessservice.EventPublisher
	if cfg.AddressRabbitMQ != "" {
		amqpConn, err = rabbitmq.Connect(cfg.AddressRabbitMQ, cfg.Retries, cfg.RetryDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetAccessQueues())
		if err != nil {
			return nil, err
		}
		publisher = events.New(ch)
	} else {
		logger.Warn("rabbitmq address is empty, access events will not be published")
	}

	accessSvc := accessservice.New(db, publisher, logger)
	userSvc := userservice.New(db, logger)
	catalogSvc := catalogservice.New(db, cacheRedis, logger)
	accesslogSvc := accesslogservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, accessSvc, userSvc, catalogSvc, accesslogSvc)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		if a.amqpConn != nil {
			if closeErr := a.amqpConn.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		return err
	}
}
