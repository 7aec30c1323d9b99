// subscriptions.go — сервис социального графа подписок.
// Направленное ребро (подписчик → цель) с жёсткими инвариантами:
// без петель, без дублей. Инварианты продублированы ограничениями
// схемы БД — сервисные проверки дают понятные ошибки, ограничения
// закрывают гонки.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strimly/data-module/internal/domain/model"
	"github.com/strimly/data-module/internal/repository"
)

var subscriptionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dm_subscriptions_created_total",
	Help: "Общее количество созданных подписок.",
})

// SubscriptionService — сервис подписок.
type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	txRunner TxRunner
	logger   *slog.Logger
}

// NewSubscriptionService создаёт сервис подписок.
func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	txRunner TxRunner,
	logger *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
		txRunner: txRunner,
		logger:   logger.With(slog.String("component", "subscription_service")),
	}
}

// Subscribe создаёт подписку subscriberID → targetID.
// Подписка на себя — ErrNotFound (цель «не видна» самому себе),
// несуществующий участник — ErrNotFound с указанием, кого нет,
// существующее ребро — ErrConflict.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, targetID string) (*model.Subscription, error) {
	if subscriberID == targetID {
		return nil, fmt.Errorf("%w: пользователь %s", ErrNotFound, targetID)
	}

	sub := &model.Subscription{
		ID:           uuid.New().String(),
		SubscriberID: subscriberID,
		TargetID:     targetID,
	}

	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		userRepo := repository.NewUserRepository(tx)
		for _, id := range []string{subscriberID, targetID} {
			exists, err := userRepo.Exists(ctx, id)
			if err != nil {
				return fmt.Errorf("проверка пользователя: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: пользователь %s", ErrNotFound, id)
			}
		}

		subRepo := repository.NewSubscriptionRepository(tx)
		exists, err := subRepo.Exists(ctx, subscriberID, targetID)
		if err != nil {
			return fmt.Errorf("проверка подписки: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: подписка уже существует", ErrConflict)
		}

		return subRepo.Create(ctx, sub)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			return nil, err
		}
		// Гонка двух одновременных подписок: уникальный индекс
		// отклоняет вторую вставку.
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: подписка уже существует", ErrConflict)
		}
		return nil, fmt.Errorf("создание подписки: %w", err)
	}

	subscriptionsCreatedTotal.Inc()
	s.logger.Info("Подписка создана",
		slog.String("subscriber_id", subscriberID),
		slog.String("target_id", targetID),
	)

	return sub, nil
}

// Unsubscribe удаляет подписку subscriberID → targetID.
// Возвращает true, если ребро существовало и было удалено.
// Несуществующий участник — ErrNotFound; отсутствие ребра между
// существующими участниками ошибкой не является.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, targetID string) (bool, error) {
	var removed int64
	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		userRepo := repository.NewUserRepository(tx)
		for _, id := range []string{subscriberID, targetID} {
			exists, err := userRepo.Exists(ctx, id)
			if err != nil {
				return fmt.Errorf("проверка пользователя: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: пользователь %s", ErrNotFound, id)
			}
		}

		var err error
		removed, err = repository.NewSubscriptionRepository(tx).Delete(ctx, subscriberID, targetID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("удаление подписки: %w", err)
	}

	if removed > 0 {
		s.logger.Info("Подписка удалена",
			slog.String("subscriber_id", subscriberID),
			slog.String("target_id", targetID),
		)
	}
	return removed > 0, nil
}

// IsSubscribed проверяет существование ребра subscriberID → targetID.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, subscriberID, targetID string) (bool, error) {
	exists, err := s.subRepo.Exists(ctx, subscriberID, targetID)
	if err != nil {
		return false, fmt.Errorf("проверка подписки: %w", err)
	}
	return exists, nil
}

// ListTargets возвращает пользователей, на которых подписан subscriberID.
func (s *SubscriptionService) ListTargets(ctx context.Context, subscriberID string) ([]*model.User, error) {
	if err := s.requireUser(ctx, subscriberID); err != nil {
		return nil, err
	}

	targets, err := s.subRepo.ListTargets(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("получение списка подписок: %w", err)
	}
	return targets, nil
}

// ListSubscribers возвращает подписчиков пользователя targetID.
func (s *SubscriptionService) ListSubscribers(ctx context.Context, targetID string) ([]*model.User, error) {
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	subscribers, err := s.subRepo.ListSubscribers(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("получение списка подписчиков: %w", err)
	}
	return subscribers, nil
}

// CountTargets возвращает количество подписок пользователя.
func (s *SubscriptionService) CountTargets(ctx context.Context, subscriberID string) (int, error) {
	if err := s.requireUser(ctx, subscriberID); err != nil {
		return 0, err
	}

	count, err := s.subRepo.CountTargets(ctx, subscriberID)
	if err != nil {
		return 0, fmt.Errorf("подсчёт подписок: %w", err)
	}
	return count, nil
}

// CountSubscribers возвращает количество подписчиков пользователя.
func (s *SubscriptionService) CountSubscribers(ctx context.Context, targetID string) (int, error) {
	if err := s.requireUser(ctx, targetID); err != nil {
		return 0, err
	}

	count, err := s.subRepo.CountSubscribers(ctx, targetID)
	if err != nil {
		return 0, fmt.Errorf("подсчёт подписчиков: %w", err)
	}
	return count, nil
}

func (s *SubscriptionService) requireUser(ctx context.Context, id string) error {
	exists, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("проверка пользователя: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: пользователь %s", ErrNotFound, id)
	}
	return nil
}
