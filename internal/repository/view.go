package repository

import (
	"context"
	"fmt"

	"github.com/strimly/data-module/internal/domain/model"
)

// ViewRepository — интерфейс доступа к таблице views (сессии просмотра).
// «Активная» сессия — строка с left_at IS NULL; частичный уникальный
// индекс гарантирует не более одной активной сессии на пару
// (зритель, трансляция).
type ViewRepository interface {
	// Open открывает новую сессию просмотра.
	// Повторное открытие при активной сессии той же пары — ErrConflict
	// (нарушение частичного уникального индекса).
	Open(ctx context.Context, v *model.View) error
	// Close закрывает активную сессию пары (зритель, трансляция),
	// проставляя left_at. Если активной сессии нет — ErrNotFound.
	Close(ctx context.Context, userID, streamID string) error
	// ListActiveViewers возвращает зрителей с активной сессией
	// на трансляции, отсортированных по username по возрастанию.
	ListActiveViewers(ctx context.Context, streamID string) ([]*model.User, error)
	// CountActive возвращает количество активных сессий трансляции.
	CountActive(ctx context.Context, streamID string) (int, error)
}

// viewRepo — реализация ViewRepository.
type viewRepo struct {
	db DBTX
}

// NewViewRepository создаёт репозиторий сессий просмотра.
func NewViewRepository(db DBTX) ViewRepository {
	return &viewRepo{db: db}
}

func (r *viewRepo) Open(ctx context.Context, v *model.View) error {
	query := `
		INSERT INTO views (id, user_id, stream_id)
		VALUES ($1, $2, $3)
		RETURNING started_at`

	err := r.db.QueryRow(ctx, query, v.ID, v.UserID, v.StreamID).Scan(&v.StartedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: активная сессия просмотра уже открыта", ErrConflict)
		}
		return fmt.Errorf("ошибка открытия сессии просмотра: %w", err)
	}
	return nil
}

func (r *viewRepo) Close(ctx context.Context, userID, streamID string) error {
	query := `
		UPDATE views SET left_at = now()
		WHERE user_id = $1 AND stream_id = $2 AND left_at IS NULL`

	tag, err := r.db.Exec(ctx, query, userID, streamID)
	if err != nil {
		return fmt.Errorf("ошибка закрытия сессии просмотра: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *viewRepo) ListActiveViewers(ctx context.Context, streamID string) ([]*model.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash,
			u.platform_type, u.platform_id, u.permissions, u.created_at, u.updated_at
		FROM views v
		JOIN users u ON u.id = v.user_id
		WHERE v.stream_id = $1 AND v.left_at IS NULL
		ORDER BY u.username ASC`

	rows, err := r.db.Query(ctx, query, streamID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка зрителей: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.PlatformType, &u.PlatformID, &u.Permissions,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования зрителя: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *viewRepo) CountActive(ctx context.Context, streamID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM views WHERE stream_id = $1 AND left_at IS NULL`,
		streamID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта активных сессий: %w", err)
	}
	return count, nil
}
