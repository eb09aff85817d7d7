package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-access-control/internal/models"
)

// AppendAccessLogEntry добавляет запись о результате сканирования в журнал
// проходов. Журнал только пополняется, записи не изменяются.
func (s *Storage) AppendAccessLogEntry(ctx context.Context, userID int, allowed bool, reason string) error {
	const op = "storage.AppendAccessLogEntry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO access_logs (user_id, ts, allowed, reason)
			  VALUES ($1, now(), $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, userID, allowed, reason); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountAllowedEntriesSince подсчитывает разрешённые проходы пользователя
// начиная с момента since. Используется для недельного лимита: запись о
// текущем сканировании в подсчёт не попадает, потому что добавляется
// только после вычисления вердикта.
func (s *Storage) CountAllowedEntriesSince(ctx context.Context, userID int, since time.Time) (int, error) {
	const op = "storage.CountAllowedEntriesSince"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM access_logs
			  WHERE user_id = $1
			    AND allowed = true
			    AND ts >= $2`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListAccessLogs возвращает последние записи журнала вместе с именем
// пользователя, от новых к старым.
func (s *Storage) ListAccessLogs(ctx context.Context, limit int) ([]*models.AccessLogInfo, error) {
	const op = "storage.ListAccessLogs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT l.id, l.user_id, l.ts, l.allowed, l.reason, u.name
			  FROM access_logs l
			  JOIN users u ON u.id = l.user_id
			  ORDER BY l.ts DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.AccessLogInfo
	for rows.Next() {
		var item models.AccessLogInfo
		if err := rows.Scan(&item.ID, &item.UserID, &item.Timestamp,
			&item.Allowed, &item.Reason, &item.UserName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteAccessLog удаляет запись журнала по ID и возвращает количество
// удалённых строк. Единственный способ изменить журнал.
func (s *Storage) DeleteAccessLog(ctx context.Context, logID int) (int, error) {
	const op = "storage.DeleteAccessLog"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM access_logs WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, logID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetLastAccessLog возвращает последнюю запись журнала пользователя
// или nil, если проходов ещё не было.
func (s *Storage) GetLastAccessLog(ctx context.Context, userID int) (*models.AccessLogEntry, error) {
	const op = "storage.GetLastAccessLog"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, ts, allowed, reason
			  FROM access_logs
			  WHERE user_id = $1
			  ORDER BY ts DESC
			  LIMIT 1`
	var item models.AccessLogEntry
	row := s.DB.QueryRowContext(ctx, query, userID)
	if err := row.Scan(&item.ID, &item.UserID, &item.Timestamp, &item.Allowed, &item.Reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}
