// streams.go — сервис трансляций.
// Создание выполняется транзакционно: проверка существования стримера
// и вставка записи — одна транзакция, частично применённых записей
// не бывает. Чтение по ID проходит через LRU-кэш, обновление
// инвалидирует кэш.
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

// NewStream — атрибуты создаваемой трансляции.
type NewStream struct {
	// StreamKey — ключ публикации; пустой генерируется автоматически
	StreamKey  string
	Title      string
	RoomID     string
	StreamerID string
}

// StreamService — сервис трансляций.
type StreamService struct {
	streamRepo repository.StreamRepository
	txRunner   TxRunner
	cache      *StreamCache
	logger     *slog.Logger
}

// NewStreamService создаёт сервис трансляций.
func NewStreamService(
	streamRepo repository.StreamRepository,
	txRunner TxRunner,
	cache *StreamCache,
	logger *slog.Logger,
) *StreamService {
	return &StreamService{
		streamRepo: streamRepo,
		txRunner:   txRunner,
		cache:      cache,
		logger:     logger.With(slog.String("component", "stream_service")),
	}
}

// Create создаёт трансляцию. Несуществующий стример — ErrNotFound.
func (s *StreamService) Create(ctx context.Context, ns NewStream) (*model.Stream, error) {
	if ns.RoomID == "" {
		return nil, fmt.Errorf("%w: room_id обязателен", ErrValidation)
	}
	if ns.StreamKey == "" {
		ns.StreamKey = uuid.New().String()
	}

	stream := &model.Stream{
		ID:         uuid.New().String(),
		StreamKey:  ns.StreamKey,
		Title:      ns.Title,
		RoomID:     ns.RoomID,
		StreamerID: ns.StreamerID,
	}

	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		userRepo := repository.NewUserRepository(tx)
		exists, err := userRepo.Exists(ctx, ns.StreamerID)
		if err != nil {
			return fmt.Errorf("проверка стримера: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: стример %s", ErrNotFound, ns.StreamerID)
		}
		return repository.NewStreamRepository(tx).Create(ctx, stream)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: stream_key уже занят", ErrConflict)
		}
		return nil, fmt.Errorf("создание трансляции: %w", err)
	}

	s.logger.Info("Трансляция создана",
		slog.String("stream_id", stream.ID),
		slog.String("streamer_id", stream.StreamerID),
	)

	// Повторное чтение ради joined-представления со стримером.
	return s.Get(ctx, stream.ID)
}

// Get возвращает трансляцию по ID через read-through LRU-кэш.
func (s *StreamService) Get(ctx context.Context, id string) (*model.Stream, error) {
	if cached, ok := s.cache.Get(id); ok {
		return cached, nil
	}

	stream, err := s.streamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение трансляции: %w", err)
	}

	s.cache.Set(id, stream)
	return stream, nil
}

// List возвращает трансляции по caller-facing токенам фильтрации.
// Нераспознанный токен — ErrValidation.
func (s *StreamService) List(ctx context.Context, p ListParams) ([]*model.Stream, error) {
	params, err := mapStreamListParams(p)
	if err != nil {
		return nil, err
	}

	streams, err := s.streamRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("получение списка трансляций: %w", err)
	}
	return streams, nil
}

// Update выполняет частичное обновление трансляции и инвалидирует кэш.
func (s *StreamService) Update(ctx context.Context, id string, fields map[string]any) (*model.Stream, error) {
	stream, err := s.streamRepo.Update(ctx, id, fields)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidColumn):
			return nil, fmt.Errorf("%w: %v", ErrInvalidColumn, err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: stream_key уже занят", ErrConflict)
		}
		return nil, fmt.Errorf("обновление трансляции: %w", err)
	}

	s.cache.Delete(id)
	s.logger.Info("Трансляция обновлена", slog.String("stream_id", id))
	return stream, nil
}
