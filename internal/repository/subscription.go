package repository

import (
	"context"
	"fmt"

	"github.com/strimly/data-module/internal/domain/model"
)

// SubscriptionRepository — интерфейс доступа к таблице subscriptions.
// Источник истины по дедупликации рёбер — ограничение
// UNIQUE (subscriber_id, target_id); предварительная проверка Exists
// в сервисном слое — только fast-path оптимизация.
type SubscriptionRepository interface {
	// Create создаёт ребро подписки. Дубликат — ErrConflict.
	Create(ctx context.Context, sub *model.Subscription) error
	// Delete удаляет ребро и возвращает количество удалённых строк
	// (0 — ребра не было, 1 — удалено).
	Delete(ctx context.Context, subscriberID, targetID string) (int64, error)
	// Exists проверяет наличие ребра (fast-path перед вставкой).
	Exists(ctx context.Context, subscriberID, targetID string) (bool, error)
	// ListTargets возвращает пользователей, на которых подписан subscriberID,
	// отсортированных по username по возрастанию.
	ListTargets(ctx context.Context, subscriberID string) ([]*model.User, error)
	// ListSubscribers возвращает подписчиков targetID,
	// отсортированных по username по возрастанию.
	ListSubscribers(ctx context.Context, targetID string) ([]*model.User, error)
	// CountTargets возвращает количество подписок пользователя.
	CountTargets(ctx context.Context, subscriberID string) (int, error)
	// CountSubscribers возвращает количество подписчиков пользователя.
	CountSubscribers(ctx context.Context, targetID string) (int, error)
}

// subscriptionRepo — реализация SubscriptionRepository.
type subscriptionRepo struct {
	db DBTX
}

// NewSubscriptionRepository создаёт репозиторий подписок.
func NewSubscriptionRepository(db DBTX) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, subscriber_id, target_id)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, sub.ID, sub.SubscriberID, sub.TargetID).Scan(&sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: подписка уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания подписки: %w", err)
	}
	return nil
}

func (r *subscriptionRepo) Delete(ctx context.Context, subscriberID, targetID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND target_id = $2`,
		subscriberID, targetID,
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления подписки: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *subscriptionRepo) Exists(ctx context.Context, subscriberID, targetID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND target_id = $2)`,
		subscriberID, targetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки подписки: %w", err)
	}
	return exists, nil
}

// listRelated выполняет join-запрос связанных пользователей ребра подписки.
func (r *subscriptionRepo) listRelated(ctx context.Context, query, id string) ([]*model.User, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения связанных пользователей: %w", err)
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
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

const relatedUserColumns = `u.id, u.username, u.email, u.password_hash,
	u.platform_type, u.platform_id, u.permissions, u.created_at, u.updated_at`

func (r *subscriptionRepo) ListTargets(ctx context.Context, subscriberID string) ([]*model.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM subscriptions s
		JOIN users u ON u.id = s.target_id
		WHERE s.subscriber_id = $1
		ORDER BY u.username ASC`, relatedUserColumns)
	return r.listRelated(ctx, query, subscriberID)
}

func (r *subscriptionRepo) ListSubscribers(ctx context.Context, targetID string) ([]*model.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.target_id = $1
		ORDER BY u.username ASC`, relatedUserColumns)
	return r.listRelated(ctx, query, targetID)
}

func (r *subscriptionRepo) CountTargets(ctx context.Context, subscriberID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта подписок: %w", err)
	}
	return count, nil
}

func (r *subscriptionRepo) CountSubscribers(ctx context.Context, targetID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE target_id = $1`, targetID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта подписчиков: %w", err)
	}
	return count, nil
}
