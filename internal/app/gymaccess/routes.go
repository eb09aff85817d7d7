// Package gymaccess предоставляет маршруты для основного приложения.
package gymaccess

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	cataloglist "github.com/magabrotheeeer/gym-access-control/internal/http/handlers/catalog/list"
	"github.com/magabrotheeeer/gym-access-control/internal/http/handlers/health"
	logslist "github.com/magabrotheeeer/gym-access-control/internal/http/handlers/logs/list"
	logsremove "github.com/magabrotheeeer/gym-access-control/internal/http/handlers/logs/remove"
	"github.com/magabrotheeeer/gym-access-control/internal/http/handlers/scan"
	"github.com/magabrotheeeer/gym-access-control/internal/http/handlers/user/assign"
	"github.com/magabrotheeeer/gym-access-control/internal/http/handlers/user/extend"
	userlist "github.com/magabrotheeeer/gym-access-control/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/gym-access-control/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/gym-access-control/internal/http/handlers/user/register"
	userremove "github.com/magabrotheeeer/gym-access-control/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/gym-access-control/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/gym-access-control/internal/http/middlewarectx"
	accessservice "github.com/magabrotheeeer/gym-access-control/internal/services/access"
	accesslogservice "github.com/magabrotheeeer/gym-access-control/internal/services/accesslog"
	catalogservice "github.com/magabrotheeeer/gym-access-control/internal/services/catalog"
	userservice "github.com/magabrotheeeer/gym-access-control/internal/services/user"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	accessSvc *accessservice.Service,
	userSvc *userservice.Service,
	catalogSvc *catalogservice.Service,
	accesslogSvc *accesslogservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))

		r.Post("/scan", scan.New(logger, accessSvc).ServeHTTP)

		r.Post("/users", register.New(logger, userSvc).ServeHTTP)
		r.Get("/users", userlist.New(logger, userSvc).ServeHTTP)
		r.Get("/users/{id}", read.New(logger, userSvc).ServeHTTP)
		r.Put("/users/{id}", update.New(logger, userSvc).ServeHTTP)
		r.Delete("/users/{id}", userremove.New(logger, userSvc).ServeHTTP)
		r.Post("/users/{id}/extend", extend.New(logger, userSvc).ServeHTTP)
		r.Post("/users/{id}/subscriptions", assign.New(logger, userSvc).ServeHTTP)

		r.Get("/types", cataloglist.New(logger, catalogSvc).ServeHTTP)

		r.Get("/logs", logslist.New(logger, accesslogSvc).ServeHTTP)
		r.Delete("/logs/{id}", logsremove.New(logger, accesslogSvc).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
