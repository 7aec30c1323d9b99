package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/strimly/data-module/internal/domain/model"
	"github.com/strimly/data-module/internal/repository"
)

// TestViewService_Close_NotFound проверяет, что закрытие без активной
// сессии даёт ErrNotFound.
func TestViewService_Close_NotFound(t *testing.T) {
	viewRepo := &mockViewRepo{
		closeFn: func(_ context.Context, _, _ string) error {
			return repository.ErrNotFound
		},
	}

	svc := NewViewService(viewRepo, &mockStreamRepo{}, nil, slog.Default())
	err := svc.Close(context.Background(), "u-1", "s-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}

// TestViewService_Close проверяет успешное закрытие активной сессии.
func TestViewService_Close(t *testing.T) {
	var gotUser, gotStream string
	viewRepo := &mockViewRepo{
		closeFn: func(_ context.Context, userID, streamID string) error {
			gotUser, gotStream = userID, streamID
			return nil
		},
	}

	svc := NewViewService(viewRepo, &mockStreamRepo{}, nil, slog.Default())
	if err := svc.Close(context.Background(), "u-1", "s-1"); err != nil {
		t.Fatalf("Close ошибка: %v", err)
	}
	if gotUser != "u-1" || gotStream != "s-1" {
		t.Errorf("Close(%q, %q), ожидался (u-1, s-1)", gotUser, gotStream)
	}
}

// TestViewService_ListViewers проверяет список активных зрителей.
func TestViewService_ListViewers(t *testing.T) {
	viewers := []*model.User{
		{ID: "u-1", Username: "alice"},
		{ID: "u-2", Username: "bob"},
	}
	viewRepo := &mockViewRepo{
		listActiveViewersFn: func(_ context.Context, _ string) ([]*model.User, error) {
			return viewers, nil
		},
	}
	streamRepo := &mockStreamRepo{
		existsFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}

	svc := NewViewService(viewRepo, streamRepo, nil, slog.Default())
	got, err := svc.ListViewers(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("ListViewers ошибка: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, ожидался 2", len(got))
	}
}

// TestViewService_ListViewers_StreamNotFound проверяет, что
// несуществующая трансляция даёт ErrNotFound, а не пустой список.
func TestViewService_ListViewers_StreamNotFound(t *testing.T) {
	svc := NewViewService(&mockViewRepo{}, &mockStreamRepo{}, nil, slog.Default())

	_, err := svc.ListViewers(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
	if !strings.Contains(err.Error(), "трансляция") {
		t.Errorf("ошибка не называет отсутствующую сущность: %v", err)
	}
}

// TestViewService_CountViewers проверяет подсчёт активных зрителей.
func TestViewService_CountViewers(t *testing.T) {
	viewRepo := &mockViewRepo{
		countActiveFn: func(_ context.Context, _ string) (int, error) { return 7, nil },
	}
	streamRepo := &mockStreamRepo{
		existsFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}

	svc := NewViewService(viewRepo, streamRepo, nil, slog.Default())
	count, err := svc.CountViewers(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("CountViewers ошибка: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, ожидался 7", count)
	}
}
