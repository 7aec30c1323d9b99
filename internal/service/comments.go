// comments.go — сервис комментариев трансляций.
// Комментарии неизменяемы; создание транзакционно проверяет автора
// и трансляцию.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/strimly/data-module/internal/domain/model"
	"github.com/strimly/data-module/internal/repository"
)

// CommentService — сервис комментариев.
type CommentService struct {
	commentRepo repository.CommentRepository
	streamRepo  repository.StreamRepository
	txRunner    TxRunner
	logger      *slog.Logger
}

// NewCommentService создаёт сервис комментариев.
func NewCommentService(
	commentRepo repository.CommentRepository,
	streamRepo repository.StreamRepository,
	txRunner TxRunner,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		streamRepo:  streamRepo,
		txRunner:    txRunner,
		logger:      logger.With(slog.String("component", "comment_service")),
	}
}

// Create создаёт комментарий автора userID на трансляции streamID.
// Несуществующий автор или трансляция — ErrNotFound с указанием,
// чего именно нет. Нулевой createdAt заменяется текущим временем.
func (s *CommentService) Create(ctx context.Context, userID, streamID, content string, createdAt time.Time) (*model.Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: пустой комментарий", ErrValidation)
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		UserID:    userID,
		StreamID:  streamID,
		Content:   content,
		CreatedAt: createdAt,
	}

	err := s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		userExists, err := repository.NewUserRepository(tx).Exists(ctx, userID)
		if err != nil {
			return fmt.Errorf("проверка автора: %w", err)
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

		return repository.NewCommentRepository(tx).Create(ctx, comment)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("создание комментария: %w", err)
	}

	s.logger.Info("Комментарий создан",
		slog.String("comment_id", comment.ID),
		slog.String("stream_id", streamID),
	)

	return comment, nil
}

// ListByStream возвращает комментарии трансляции с авторами,
// свежие первыми. Несуществующая трансляция — ErrNotFound.
func (s *CommentService) ListByStream(ctx context.Context, streamID string) ([]*model.Comment, error) {
	exists, err := s.streamRepo.Exists(ctx, streamID)
	if err != nil {
		return nil, fmt.Errorf("проверка трансляции: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: трансляция %s", ErrNotFound, streamID)
	}

	comments, err := s.commentRepo.ListByStream(ctx, streamID)
	if err != nil {
		return nil, fmt.Errorf("получение комментариев: %w", err)
	}
	return comments, nil
}
