package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникального индекса.
const uniqueViolation = "23505"

// CreateUser сохраняет нового пользователя и возвращает его ID.
// При дубликате телефона или RFID-метки возвращает ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (name, phone, rfid_tag)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, user.Name, user.Phone, user.RFIDTag).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindUserByTag возвращает пользователя по его RFID-метке.
// Если метка никому не принадлежит, возвращает ErrUserNotFound.
func (s *Storage) FindUserByTag(ctx context.Context, tag string) (*models.User, error) {
	const op = "storage.FindUserByTag"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, phone, rfid_tag, created_at
			  FROM users
			  WHERE rfid_tag = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, tag)
	if err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.RFIDTag, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его ID.
func (s *Storage) GetUser(ctx context.Context, userID int) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, phone, rfid_tag, created_at
			  FROM users
			  WHERE id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userID)
	if err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.RFIDTag, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUser обновляет имя, телефон и RFID-метку пользователя,
// возвращает количество изменённых строк.
func (s *Storage) UpdateUser(ctx context.Context, userID int, name, phone, rfidTag string) (int, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET name = $1, phone = $2, rfid_tag = $3
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, name, phone, rfidTag, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteUser удаляет пользователя вместе с его абонементами и записями
// журнала. Возвращает количество удалённых пользователей.
func (s *Storage) DeleteUser(ctx context.Context, userID int) (int, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM access_logs WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM subscriptions WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListUsers возвращает всех пользователей вместе с названием и датой
// окончания текущего абонемента. Для пользователя без действующего
// абонемента поля остаются nil; из пересекающихся окон берётся
// самое позднее по дате окончания.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.UserInfo, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT DISTINCT ON (u.id)
			      u.id, u.name, u.phone, u.rfid_tag, u.created_at,
			      t.name, sub.end_date
			  FROM users u
			  LEFT JOIN subscriptions sub
			      ON sub.user_id = u.id AND sub.end_date >= CURRENT_DATE
			  LEFT JOIN subscription_types t ON t.id = sub.type_id
			  ORDER BY u.id, sub.end_date DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UserInfo
	for rows.Next() {
		var item models.UserInfo
		var subName sql.NullString
		var endDate sql.NullTime
		if err := rows.Scan(&item.ID, &item.Name, &item.Phone, &item.RFIDTag,
			&item.CreatedAt, &subName, &endDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if subName.Valid {
			item.SubscriptionName = &subName.String
		}
		if endDate.Valid {
			item.EndDate = &endDate.Time
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
