package repository

import (
	"context"
	"fmt"

	"github.com/strimly/data-module/internal/domain/model"
)

// CommentRepository — интерфейс доступа к таблице comments.
// Комментарии неизменяемы: есть создание и чтение списком, пути
// обновления нет.
type CommentRepository interface {
	// Create создаёт комментарий.
	Create(ctx context.Context, c *model.Comment) error
	// ListByStream возвращает комментарии трансляции с авторами,
	// отсортированные по created_at по убыванию.
	ListByStream(ctx context.Context, streamID string) ([]*model.Comment, error)
}

// commentRepo — реализация CommentRepository.
type commentRepo struct {
	db DBTX
}

// NewCommentRepository создаёт репозиторий комментариев.
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepo{db: db}
}

func (r *commentRepo) Create(ctx context.Context, c *model.Comment) error {
	// created_at задаёт вызывающая сторона: клиент чата присылает
	// собственную отметку времени сообщения.
	query := `
		INSERT INTO comments (id, user_id, stream_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, c.ID, c.UserID, c.StreamID, c.Content, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания комментария: %w", err)
	}
	return nil
}

func (r *commentRepo) ListByStream(ctx context.Context, streamID string) ([]*model.Comment, error) {
	query := `
		SELECT c.id, c.user_id, c.stream_id, c.content, c.created_at,
			u.id, u.username, u.email, u.password_hash,
			u.platform_type, u.platform_id, u.permissions, u.created_at, u.updated_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.stream_id = $1
		ORDER BY c.created_at DESC`

	rows, err := r.db.Query(ctx, query, streamID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения комментариев: %w", err)
	}
	defer rows.Close()

	var result []*model.Comment
	for rows.Next() {
		c := &model.Comment{Author: &model.User{}}
		u := c.Author
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.StreamID, &c.Content, &c.CreatedAt,
			&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.PlatformType, &u.PlatformID, &u.Permissions,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования комментария: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
