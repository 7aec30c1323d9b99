// views.go — сервис сессий просмотра (viewer presence).
// Открытие сессии транзакционно проверяет существование зрителя
// и трансляции; активность сессии кодируется отсутствием left_at.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/strimly/data-module/internal/domain/model"
	"github.com/strimly/data-module/internal/repository"
)

// ViewService — сервис сессий просмотра.
type ViewService struct {
	viewRepo   repository.ViewRepository
	streamRepo repository.StreamRepository
	txRunner   TxRunner
	logger     *slog.Logger
}

// NewViewService создаёт сервис сессий просмотра.
func NewViewService(
	viewRepo repository.ViewRepository,
	streamRepo repository.StreamRepository,
	txRunner TxRunner,
	logger *slog.Logger,
) *ViewService {
	return &ViewService{
		viewRepo:   viewRepo,
		streamRepo: streamRepo,
		txRunner:   txRunner,
		logger:     logger.With(slog.String("component", "view_service")),
	}
}

// Open открывает сессию просмотра зрителя на трансляции.
// Несуществующий зритель или трансляция — ErrNotFound с указанием,
// чего именно нет. Повторное открытие при активной сессии — ErrConflict.
func (s *ViewService) Open(ctx context.Context, userID, streamID string) (*model.View, error) {
	view := &model.View{
		ID:       uuid.New().String(),
		UserID:   userID,
		StreamID: streamID,
	}

	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		userExists, err := repository.NewUserRepository(tx).Exists(ctx, userID)
		if err != nil {
			return fmt.Errorf("проверка зрителя: %w", err)
		}
		if !userExists {
			return fmt.Errorf("%w: пользователь %s", ErrNotFound, userID)
		}

		streamExists, err := repository.NewStreamRepository(tx).Exists(ctx, streamID)
		if err != nil {
			return fmt.Errorf("проверка трансляции: %w", err)
		}
		if !streamExists {
			return fmt.Errorf("%w: трансляция %s", ErrNotFound, streamID)
		}

		return repository.NewViewRepository(tx).Open(ctx, view)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: активная сессия просмотра уже открыта", ErrConflict)
		}
		return nil, fmt.Errorf("открытие сессии просмотра: %w", err)
	}

	s.logger.Info("Сессия просмотра открыта",
		slog.String("user_id", userID),
		slog.String("stream_id", streamID),
	)

	return view, nil
}

// Close закрывает активную сессию пары (зритель, трансляция).
// Отсутствие активной сессии — ErrNotFound.
func (s *ViewService) Close(ctx context.Context, userID, streamID string) error {
	if err := s.viewRepo.Close(ctx, userID, streamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: активная сессия просмотра", ErrNotFound)
		}
		return fmt.Errorf("закрытие сессии просмотра: %w", err)
	}

	s.logger.Info("Сессия просмотра закрыта",
		slog.String("user_id", userID),
		slog.String("stream_id", streamID),
	)
	return nil
}

// ListViewers возвращает зрителей с активной сессией на трансляции.
// Несуществующая трансляция — ErrNotFound, а не пустой список.
func (s *ViewService) ListViewers(ctx context.Context, streamID string) ([]*model.User, error) {
	if err := s.requireStream(ctx, streamID); err != nil {
		return nil, err
	}

	viewers, err := s.viewRepo.ListActiveViewers(ctx, streamID)
	if err != nil {
		return nil, fmt.Errorf("получение списка зрителей: %w", err)
	}
	return viewers, nil
}

// CountViewers возвращает количество активных зрителей трансляции.
func (s *ViewService) CountViewers(ctx context.Context, streamID string) (int, error) {
	if err := s.requireStream(ctx, streamID); err != nil {
		return 0, err
	}

	count, err := s.viewRepo.CountActive(ctx, streamID)
	if err != nil {
		return 0, fmt.Errorf("подсчёт зрителей: %w", err)
	}
	return count, nil
}

func (s *ViewService) requireStream(ctx context.Context, streamID string) error {
	exists, err := s.streamRepo.Exists(ctx, streamID)
	if err != nil {
		return fmt.Errorf("проверка трансляции: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: трансляция %s", ErrNotFound, streamID)
	}
	return nil
}
