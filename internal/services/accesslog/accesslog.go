// Package accesslog содержит административные операции над журналом
// проходов: просмотр последних записей и удаление.
package accesslog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// DefaultLimit — число записей журнала по умолчанию в административном списке.
const DefaultLimit = 50

// Repository определяет методы хранилища, которые использует сервис.
type Repository interface {
	ListAccessLogs(ctx context.Context, limit int) ([]*models.AccessLogInfo, error)
	DeleteAccessLog(ctx context.Context, logID int) (int, error)
}

// Service реализует операции над журналом проходов.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// List возвращает последние записи журнала, от новых к старым.
// При limit <= 0 используется DefaultLimit.
func (s *Service) List(ctx context.Context, limit int) ([]*models.AccessLogInfo, error) {
	const op = "services.accesslog.List"

	if limit <= 0 {
		limit = DefaultLimit
	}
	logs, err := s.repo.ListAccessLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return logs, nil
}

// Delete удаляет запись журнала по ID, возвращает количество удалённых строк.
func (s *Service) Delete(ctx context.Context, logID int) (int, error) {
	const op = "services.accesslog.Delete"

	count, err := s.repo.DeleteAccessLog(ctx, logID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		s.log.Info("deleted access log entry", slog.Int("log_id", logID))
	}
	return count, nil
}
