package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/strimly/data-module/internal/domain/model"
)

// TestCommentService_Create_Validation проверяет отказ на пустом
// содержимом до обращения к хранилищу.
func TestCommentService_Create_Validation(t *testing.T) {
	svc := NewCommentService(&mockCommentRepo{}, &mockStreamRepo{}, nil, slog.Default())

	_, err := svc.Create(context.Background(), "u-1", "s-1", "", time.Time{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ожидался ErrValidation, получено: %v", err)
	}
}

// TestCommentService_Create_StreamNotFound проверяет, что при
// существующем авторе и несуществующей трансляции ошибка называет
// именно трансляцию.
func TestCommentService_Create_StreamNotFound(t *testing.T) {
	runner := &fakeTxRunner{tx: &fakeTx{userExists: true, streamExists: false}}
	svc := NewCommentService(&mockCommentRepo{}, &mockStreamRepo{}, runner, slog.Default())

	_, err := svc.Create(context.Background(), "u-1", "s-missing", "привет", time.Time{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
	if !strings.Contains(err.Error(), "s-missing") {
		t.Errorf("ошибка должна называть трансляцию, получено: %v", err)
	}
	if strings.Contains(err.Error(), "u-1") {
		t.Errorf("ошибка не должна называть автора, получено: %v", err)
	}
}

// TestCommentService_Create_UserNotFound проверяет, что при
// несуществующем авторе ошибка называет пользователя.
func TestCommentService_Create_UserNotFound(t *testing.T) {
	runner := &fakeTxRunner{tx: &fakeTx{userExists: false, streamExists: true}}
	svc := NewCommentService(&mockCommentRepo{}, &mockStreamRepo{}, runner, slog.Default())

	_, err := svc.Create(context.Background(), "u-missing", "s-1", "привет", time.Time{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
	if !strings.Contains(err.Error(), "u-missing") {
		t.Errorf("ошибка должна называть пользователя, получено: %v", err)
	}
}

// TestCommentService_Create проверяет успешное создание: обе проверки
// существования проходят, вставка выполняется, отметка времени
// вызывающей стороны сохраняется.
func TestCommentService_Create(t *testing.T) {
	tx := &fakeTx{userExists: true, streamExists: true}
	svc := NewCommentService(&mockCommentRepo{}, &mockStreamRepo{}, &fakeTxRunner{tx: tx}, slog.Default())

	sent := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	comment, err := svc.Create(context.Background(), "u-1", "s-1", "привет", sent)
	if err != nil {
		t.Fatalf("Create ошибка: %v", err)
	}
	if tx.inserted != 1 {
		t.Errorf("inserted = %d, ожидалась одна вставка", tx.inserted)
	}
	if comment.ID == "" || !comment.CreatedAt.Equal(sent) {
		t.Errorf("comment = %+v, ожидались сгенерированный ID и отметка %v", comment, sent)
	}
}

// TestCommentService_ListByStream проверяет список комментариев.
func TestCommentService_ListByStream(t *testing.T) {
	comments := []*model.Comment{
		{ID: "c-2", Content: "позже"},
		{ID: "c-1", Content: "раньше"},
	}
	commentRepo := &mockCommentRepo{
		listByStreamFn: func(_ context.Context, _ string) ([]*model.Comment, error) {
			return comments, nil
		},
	}
	streamRepo := &mockStreamRepo{
		existsFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}

	svc := NewCommentService(commentRepo, streamRepo, nil, slog.Default())
	got, err := svc.ListByStream(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("ListByStream ошибка: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c-2" {
		t.Errorf("got = %+v, ожидался порядок [c-2, c-1]", got)
	}
}

// TestCommentService_ListByStream_StreamNotFound проверяет, что
// несуществующая трансляция даёт ErrNotFound, а не пустой список.
func TestCommentService_ListByStream_StreamNotFound(t *testing.T) {
	svc := NewCommentService(&mockCommentRepo{}, &mockStreamRepo{}, nil, slog.Default())

	_, err := svc.ListByStream(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}
