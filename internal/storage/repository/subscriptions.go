package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// ListSubscriptionTypes возвращает каталог типов абонементов.
func (s *Storage) ListSubscriptionTypes(ctx context.Context) ([]*models.SubscriptionType, error) {
	const op = "storage.ListSubscriptionTypes"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, entries_per_week, duration_days, price
			  FROM subscription_types
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionType
	for rows.Next() {
		var item models.SubscriptionType
		var entries sql.NullInt64
		if err := rows.Scan(&item.ID, &item.Name, &entries, &item.DurationDays, &item.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if entries.Valid {
			n := int(entries.Int64)
			item.EntriesPerWeek = &n
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetSubscriptionType возвращает тип абонемента по его ID.
func (s *Storage) GetSubscriptionType(ctx context.Context, typeID int) (*models.SubscriptionType, error) {
	const op = "storage.GetSubscriptionType"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, entries_per_week, duration_days, price
			  FROM subscription_types
			  WHERE id = $1`
	var item models.SubscriptionType
	var entries sql.NullInt64
	row := s.DB.QueryRowContext(ctx, query, typeID)
	if err := row.Scan(&item.ID, &item.Name, &entries, &item.DurationDays, &item.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionTypeNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if entries.Valid {
		n := int(entries.Int64)
		item.EntriesPerWeek = &n
	}
	return &item, nil
}

// CreateSubscription сохраняет новый абонемент пользователя и возвращает его ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, type_id, start_date, end_date)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.TypeID, sub.StartDate, sub.EndDate).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetActiveSubscription возвращает действующий на дату asOf абонемент
// пользователя вместе с данными его типа. Из нескольких пересекающихся
// окон берётся запись с самой поздней датой окончания. Если действующего
// абонемента нет, возвращает (nil, nil).
func (s *Storage) GetActiveSubscription(ctx context.Context, userID int, asOf time.Time) (*models.ActiveSubscriptionInfo, error) {
	const op = "storage.GetActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sub.id, sub.user_id, sub.type_id, sub.start_date, sub.end_date,
			      t.name, t.entries_per_week
			  FROM subscriptions sub
			  JOIN subscription_types t ON t.id = sub.type_id
			  WHERE sub.user_id = $1
			    AND sub.start_date <= $2::date
			    AND sub.end_date >= $2::date
			  ORDER BY sub.end_date DESC
			  LIMIT 1`
	var item models.ActiveSubscriptionInfo
	var entries sql.NullInt64
	row := s.DB.QueryRowContext(ctx, query, userID, asOf)
	if err := row.Scan(&item.ID, &item.UserID, &item.TypeID, &item.StartDate,
		&item.EndDate, &item.TypeName, &entries); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if entries.Valid {
		n := int(entries.Int64)
		item.EntriesPerWeek = &n
	}
	return &item, nil
}

// ExtendCurrentSubscription сдвигает дату окончания последнего ещё не
// истёкшего абонемента пользователя на days дней вперёд. Возвращает
// количество изменённых строк: 0 означает, что продлевать нечего.
func (s *Storage) ExtendCurrentSubscription(ctx context.Context, userID, days int) (int, error) {
	const op = "storage.ExtendCurrentSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET end_date = end_date + make_interval(days => $2)
			  WHERE id = (SELECT id
			              FROM subscriptions
			              WHERE user_id = $1 AND end_date >= CURRENT_DATE
			              ORDER BY end_date DESC
			              LIMIT 1)`
	result, err := s.DB.ExecContext(ctx, query, userID, days)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
