// Package list реализует HTTP-обработчик административного списка
// последних записей журнала проходов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-access-control/internal/http/response"
	"github.com/magabrotheeeer/gym-access-control/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// Handler управляет HTTP-запросами списка записей журнала.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения журнала проходов.
type Service interface {
	List(ctx context.Context, limit int) ([]*models.AccessLogInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Последние записи журнала проходов
// @Description Возвращает последние записи журнала с именами посетителей, от новых к старым.
// @Tags Logs
// @Produce  json
// @Param limit query int false "Максимум записей, по умолчанию 50"
// @Success 200 {object} response.Response "Записи журнала"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /logs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.logs.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("invalid limit format", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid limit"))
			return
		}
		limit = parsed
	}

	logs, err := h.service.List(r.Context(), limit)
	if err != nil {
		log.Error("failed to list access logs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list access logs"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"logs": logs,
	}))
}
