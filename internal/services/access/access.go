// Package access содержит правило вычисления доступа — ядро системы.
// Вердикт складывается из действующего абонемента и числа разрешённых
// проходов за текущую неделю; само вычисление — чистая функция без
// побочных эффектов, запись в журнал выполняется отдельно.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-access-control/internal/lib/sl"
	"github.com/magabrotheeeer/gym-access-control/internal/lib/week"
	"github.com/magabrotheeeer/gym-access-control/internal/metrics"
	"github.com/magabrotheeeer/gym-access-control/internal/models"
	"github.com/magabrotheeeer/gym-access-control/internal/storage/repository"
)

// expiryWarningDays — за сколько дней до окончания абонемента проход
// сопровождается предупреждением.
const expiryWarningDays = 7

// Repository определяет методы хранилища, которые использует вычислитель.
type Repository interface {
	// FindUserByTag возвращает пользователя по RFID-метке,
	// repository.ErrUserNotFound — если метка никому не принадлежит.
	FindUserByTag(ctx context.Context, tag string) (*models.User, error)
	// GetActiveSubscription возвращает действующий на дату asOf абонемент
	// с данными типа либо nil, если такого нет.
	GetActiveSubscription(ctx context.Context, userID int, asOf time.Time) (*models.ActiveSubscriptionInfo, error)
	// CountAllowedEntriesSince считает разрешённые проходы с момента since.
	CountAllowedEntriesSince(ctx context.Context, userID int, since time.Time) (int, error)
	// AppendAccessLogEntry добавляет запись о сканировании в журнал.
	AppendAccessLogEntry(ctx context.Context, userID int, allowed bool, reason string) error
}

// EventPublisher публикует события проходов для внешних потребителей.
type EventPublisher interface {
	Publish(event models.AccessEvent) error
}

// Service реализует обработку сканирований поверх хранилища.
type Service struct {
	repo   Repository
	events EventPublisher
	log    *slog.Logger
}

// New создает новый Service. events может быть nil, тогда события
// проходов не публикуются.
func New(repo Repository, events EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// Evaluate применяет правило доступа к уже загруженному снимку данных.
// Функция детерминированная и ничего не изменяет: sub — действующий
// абонемент (nil, если его нет), weeklyCount — разрешённые проходы с
// понедельника ДО текущего сканирования.
//
// Порядок проверок фиксированный: отсутствие абонемента, недельный
// лимит, затем предупреждение об истечении. Абонемент без лимита
// пропускает проверку лимита при любом счётчике.
func Evaluate(sub *models.ActiveSubscriptionInfo, weeklyCount int, today time.Time) models.Verdict {
	if sub == nil {
		return models.Verdict{
			Granted:     false,
			Reason:      "No active subscription found.",
			Code:        models.VerdictDenied,
			WeeklyCount: weeklyCount,
		}
	}

	name := sub.TypeName

	if sub.EntriesPerWeek != nil && weeklyCount >= *sub.EntriesPerWeek {
		return models.Verdict{
			Granted:          false,
			Reason:           fmt.Sprintf("Weekly limit reached (%d/%d).", weeklyCount, *sub.EntriesPerWeek),
			Code:             models.VerdictDenied,
			SubscriptionName: &name,
			WeeklyCount:      weeklyCount,
		}
	}

	// Абонемент действует, значит daysLeft >= 0.
	daysLeft := week.DaysUntil(today, sub.EndDate)
	if daysLeft <= expiryWarningDays {
		return models.Verdict{
			Granted:          true,
			Reason:           fmt.Sprintf("Access Granted. Expires in %d days (%s)", daysLeft, sub.EndDate.Format("2006-01-02")),
			Code:             models.VerdictWarning,
			SubscriptionName: &name,
			WeeklyCount:      weeklyCount,
		}
	}

	return models.Verdict{
		Granted:          true,
		Reason:           "Access Granted",
		Code:             models.VerdictAllowed,
		SubscriptionName: &name,
		WeeklyCount:      weeklyCount,
	}
}

// EvaluateAccess загружает снимок данных пользователя и применяет правило
// доступа. Состояние не изменяется: повторный вызов без новых записей в
// журнале даёт тот же результат. Ошибки хранилища пробрасываются наружу,
// вердикт в этом случае не формируется.
func (s *Service) EvaluateAccess(ctx context.Context, userID int) (models.Verdict, error) {
	const op = "services.access.EvaluateAccess"

	today := time.Now()

	sub, err := s.repo.GetActiveSubscription(ctx, userID, today)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.repo.CountAllowedEntriesSince(ctx, userID, week.Start(today))
	if err != nil {
		return models.Verdict{}, fmt.Errorf("%s: %w", op, err)
	}

	return Evaluate(sub, count, today), nil
}

// Scan обрабатывает сканирование RFID-метки: находит пользователя,
// вычисляет вердикт, записывает результат в журнал и возвращает ответ
// для табло. Для неизвестной метки запись в журнал не создаётся.
// WeeklyCount в ответе включает текущий проход, если он разрешён.
func (s *Service) Scan(ctx context.Context, tag string) (*models.ScanResult, error) {
	const op = "services.access.Scan"

	user, err := s.repo.FindUserByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Info("scan with unknown tag", slog.String("rfid_tag", tag))
			metrics.ScansTotal.WithLabelValues(string(models.ScanUnknown)).Inc()
			s.publish(models.AccessEvent{
				RFIDTag:   tag,
				Status:    models.ScanUnknown,
				Reason:    "User not found",
				Timestamp: time.Now(),
			})
			return &models.ScanResult{
				Status:  models.ScanUnknown,
				RFIDTag: tag,
				Message: "User not found",
			}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	verdict, err := s.EvaluateAccess(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Запись о текущем сканировании появляется в журнале только после
	// вычисления, поэтому в weeklyCount она не входит.
	if err := s.repo.AppendAccessLogEntry(ctx, user.ID, verdict.Granted, verdict.Reason); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	displayCount := verdict.WeeklyCount
	if verdict.Granted {
		displayCount++
	}

	status := models.ScanStatus(verdict.Code)
	metrics.ScansTotal.WithLabelValues(string(status)).Inc()
	s.publish(models.AccessEvent{
		UserID:    user.ID,
		UserName:  user.Name,
		RFIDTag:   tag,
		Status:    status,
		Reason:    verdict.Reason,
		Timestamp: time.Now(),
	})

	s.log.Info("scan processed",
		slog.Int("user_id", user.ID),
		slog.String("status", string(status)),
		slog.Int("weekly_count", displayCount))

	return &models.ScanResult{
		Status:           status,
		RFIDTag:          tag,
		UserName:         user.Name,
		Message:          verdict.Reason,
		SubscriptionName: verdict.SubscriptionName,
		WeeklyCount:      displayCount,
	}, nil
}

// publish отправляет событие прохода, ошибка публикации не влияет на
// результат сканирования.
func (s *Service) publish(event models.AccessEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.log.Warn("failed to publish access event", sl.Err(err))
	}
}
