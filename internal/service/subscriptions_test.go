package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/strimly/data-module/internal/domain/model"
)

// TestSubscriptionService_Subscribe_Self проверяет отказ на подписке
// на себя: ErrNotFound до обращения к хранилищу.
func TestSubscriptionService_Subscribe_Self(t *testing.T) {
	svc := NewSubscriptionService(&mockSubscriptionRepo{}, &mockUserRepo{}, nil, slog.Default())

	_, err := svc.Subscribe(context.Background(), "u-1", "u-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}

// TestSubscriptionService_IsSubscribed проверяет прямую проверку ребра.
func TestSubscriptionService_IsSubscribed(t *testing.T) {
	subRepo := &mockSubscriptionRepo{
		existsFn: func(_ context.Context, subscriberID, targetID string) (bool, error) {
			return subscriberID == "u-1" && targetID == "u-2", nil
		},
	}

	svc := NewSubscriptionService(subRepo, &mockUserRepo{}, nil, slog.Default())

	ok, err := svc.IsSubscribed(context.Background(), "u-1", "u-2")
	if err != nil {
		t.Fatalf("IsSubscribed ошибка: %v", err)
	}
	if !ok {
		t.Error("ожидался true для существующего ребра")
	}

	// Направленность: обратное ребро не существует.
	ok, err = svc.IsSubscribed(context.Background(), "u-2", "u-1")
	if err != nil {
		t.Fatalf("IsSubscribed ошибка: %v", err)
	}
	if ok {
		t.Error("ожидался false для обратного направления")
	}
}

// TestSubscriptionService_ListTargets проверяет список подписок.
func TestSubscriptionService_ListTargets(t *testing.T) {
	subRepo := &mockSubscriptionRepo{
		listTargetsFn: func(_ context.Context, _ string) ([]*model.User, error) {
			return []*model.User{{ID: "u-2", Username: "bob"}}, nil
		},
	}
	userRepo := &mockUserRepo{
		existsFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}

	svc := NewSubscriptionService(subRepo, userRepo, nil, slog.Default())
	targets, err := svc.ListTargets(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListTargets ошибка: %v", err)
	}
	if len(targets) != 1 || targets[0].Username != "bob" {
		t.Errorf("targets = %+v, ожидался [bob]", targets)
	}
}

// TestSubscriptionService_ListTargets_UserNotFound проверяет, что
// несуществующий пользователь даёт ErrNotFound, а не пустой список.
func TestSubscriptionService_ListTargets_UserNotFound(t *testing.T) {
	svc := NewSubscriptionService(&mockSubscriptionRepo{}, &mockUserRepo{}, nil, slog.Default())

	_, err := svc.ListTargets(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}

// TestSubscriptionService_Counts проверяет подсчёты в обе стороны графа.
func TestSubscriptionService_Counts(t *testing.T) {
	subRepo := &mockSubscriptionRepo{
		countTargetsFn:     func(_ context.Context, _ string) (int, error) { return 3, nil },
		countSubscribersFn: func(_ context.Context, _ string) (int, error) { return 12, nil },
	}
	userRepo := &mockUserRepo{
		existsFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}

	svc := NewSubscriptionService(subRepo, userRepo, nil, slog.Default())

	targets, err := svc.CountTargets(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CountTargets ошибка: %v", err)
	}
	if targets != 3 {
		t.Errorf("CountTargets = %d, ожидался 3", targets)
	}

	subscribers, err := svc.CountSubscribers(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("CountSubscribers ошибка: %v", err)
	}
	if subscribers != 12 {
		t.Errorf("CountSubscribers = %d, ожидался 12", subscribers)
	}
}
