// Package scan реализует HTTP-обработчик сканирования RFID-метки.
//
// Handler принимает JSON-запрос с меткой, валидирует его и передаёт метку
// в сервис доступа: тот находит пользователя, вычисляет вердикт и пишет
// результат в журнал. Неизвестная метка — не ошибка, а отдельный статус
// "unknown" в успешном ответе.
package scan

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-access-control/internal/http/response"
	"github.com/magabrotheeeer/gym-access-control/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// Handler управляет HTTP-запросами сканирования меток.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис доступа
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс сервиса доступа.
type Service interface {
	Scan(ctx context.Context, tag string) (*models.ScanResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обработать сканирование RFID-метки
// @Description Вычисляет вердикт доступа для метки и записывает результат в журнал.
// @Tags Access
// @Accept  json
// @Produce  json
// @Param request body models.DummyScan true "RFID-метка"
// @Success 200 {object} response.Response "Результат сканирования"
// @Failure 400 {object} response.ErrorResponse "Пустая метка или некорректный JSON"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /scan [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scan"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyScan
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Scan(r.Context(), req.RFIDTag)
	if err != nil {
		log.Error("failed to process scan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process scan"))
		return
	}

	log.Info("scan handled", slog.String("status", string(result.Status)))
	render.JSON(w, r, response.StatusOKWithData(result))
}
