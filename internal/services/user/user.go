// Package user содержит бизнес-логику регистрации и администрирования
// посетителей: создание пользователя с назначением абонемента, обновление,
// продление, удаление и списки.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// Repository определяет методы хранилища, которые использует сервис.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (int, error)
	GetUser(ctx context.Context, userID int) (*models.User, error)
	UpdateUser(ctx context.Context, userID int, name, phone, rfidTag string) (int, error)
	DeleteUser(ctx context.Context, userID int) (int, error)
	ListUsers(ctx context.Context) ([]*models.UserInfo, error)
	GetSubscriptionType(ctx context.Context, typeID int) (*models.SubscriptionType, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	GetActiveSubscription(ctx context.Context, userID int, asOf time.Time) (*models.ActiveSubscriptionInfo, error)
	ExtendCurrentSubscription(ctx context.Context, userID, days int) (int, error)
	GetLastAccessLog(ctx context.Context, userID int) (*models.AccessLogEntry, error)
}

// Service реализует операции над пользователями и их абонементами.
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

// Details объединяет пользователя с его действующим абонементом и
// последней записью журнала.
type Details struct {
	User         models.User                    `json:"user"`
	Subscription *models.ActiveSubscriptionInfo `json:"subscription"`
	LastAccess   *models.AccessLogEntry         `json:"last_access"`
}

// Register создает пользователя и назначает ему абонемент выбранного типа.
// Окно действия начинается сегодня и длится duration_days каталога.
func (s *Service) Register(ctx context.Context, req models.DummyUser) (int, error) {
	const op = "services.user.Register"

	subType, err := s.repo.GetSubscriptionType(ctx, req.SubscriptionTypeID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	userID, err := s.repo.CreateUser(ctx, models.User{
		Name:    req.Name,
		Phone:   req.Phone,
		RFIDTag: req.RFIDTag,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	startDate := time.Now()
	endDate := startDate.AddDate(0, 0, subType.DurationDays)
	if _, err := s.repo.CreateSubscription(ctx, models.Subscription{
		UserID:    userID,
		TypeID:    subType.ID,
		StartDate: startDate,
		EndDate:   endDate,
	}); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("registered new user",
		slog.Int("user_id", userID),
		slog.String("subscription", subType.Name))

	return userID, nil
}

// Get возвращает пользователя вместе с действующим абонементом и
// последней записью журнала проходов.
func (s *Service) Get(ctx context.Context, userID int) (*Details, error) {
	const op = "services.user.Get"

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.repo.GetActiveSubscription(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lastLog, err := s.repo.GetLastAccessLog(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Details{
		User:         *user,
		Subscription: sub,
		LastAccess:   lastLog,
	}, nil
}

// List возвращает всех пользователей с данными текущих абонементов.
func (s *Service) List(ctx context.Context) ([]*models.UserInfo, error) {
	const op = "services.user.List"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Update обновляет имя, телефон и RFID-метку пользователя.
// Возвращает количество изменённых записей.
func (s *Service) Update(ctx context.Context, userID int, req models.DummyUserUpdate) (int, error) {
	const op = "services.user.Update"

	count, err := s.repo.UpdateUser(ctx, userID, req.Name, req.Phone, req.RFIDTag)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// Delete удаляет пользователя вместе с абонементами и журналом.
func (s *Service) Delete(ctx context.Context, userID int) (int, error) {
	const op = "services.user.Delete"

	count, err := s.repo.DeleteUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		s.log.Info("deleted user with subscriptions and logs", slog.Int("user_id", userID))
	}
	return count, nil
}

// Extend продлевает текущий абонемент пользователя на заданное число дней.
// Возвращает количество изменённых записей: 0 — продлевать нечего.
func (s *Service) Extend(ctx context.Context, userID, days int) (int, error) {
	const op = "services.user.Extend"

	count, err := s.repo.ExtendCurrentSubscription(ctx, userID, days)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// Assign назначает пользователю новый абонемент выбранного типа, начиная
// с сегодняшнего дня. Пересечение с уже действующим окном не запрещается:
// при вычислении доступа побеждает окно с самой поздней датой окончания.
func (s *Service) Assign(ctx context.Context, userID, typeID int) (int, error) {
	const op = "services.user.Assign"

	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	subType, err := s.repo.GetSubscriptionType(ctx, typeID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	startDate := time.Now()
	id, err := s.repo.CreateSubscription(ctx, models.Subscription{
		UserID:    userID,
		TypeID:    subType.ID,
		StartDate: startDate,
		EndDate:   startDate.AddDate(0, 0, subType.DurationDays),
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("assigned subscription",
		slog.Int("user_id", userID),
		slog.String("subscription", subType.Name))

	return id, nil
}
