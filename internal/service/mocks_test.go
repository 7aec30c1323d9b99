package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/strimly/data-module/internal/domain/model"
	"github.com/strimly/data-module/internal/repository"
)

// --- Заглушки транзакции для композитных операций ---

// fakeRow — pgx.Row с заданной функцией Scan.
type fakeRow struct {
	scanFn func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scanFn(dest...) }

// fakeTx — заглушка pgx.Tx: отвечает на EXISTS-запросы к users и
// streams заданными значениями, вставки учитывает счётчиком.
type fakeTx struct {
	pgx.Tx
	userExists   bool
	streamExists bool
	inserted     int
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	exists := false
	switch {
	case strings.Contains(sql, "FROM users"):
		exists = t.userExists
	case strings.Contains(sql, "FROM streams"):
		exists = t.streamExists
	}
	return fakeRow{scanFn: func(dest ...any) error {
		if b, ok := dest[0].(*bool); ok {
			*b = exists
			return nil
		}
		return pgx.ErrNoRows
	}}
}

func (t *fakeTx) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	t.inserted++
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

// fakeTxRunner выполняет fn поверх заглушки транзакции без БД.
type fakeTxRunner struct {
	tx pgx.Tx
}

func (f *fakeTxRunner) RunInTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(f.tx)
}

// --- Моки репозиториев для unit-тестов ---

// mockUserRepo — мок UserRepository.
type mockUserRepo struct {
	createFn          func(ctx context.Context, u *model.User) error
	getByIDFn         func(ctx context.Context, id string) (*model.User, error)
	getByEmailFn      func(ctx context.Context, email string) (*model.User, error)
	getByUsernameFn   func(ctx context.Context, username string) (*model.User, error)
	getByPlatformIDFn func(ctx context.Context, platformType, platformID string) (*model.User, error)
	updateFn          func(ctx context.Context, id string, fields map[string]any) (*model.User, error)
	deleteFn          func(ctx context.Context, id string) error
	listFn            func(ctx context.Context, admins bool, dir repository.SortDirection) ([]*model.User, error)
	countFn           func(ctx context.Context, admins bool) (int, error)
	existsFn          func(ctx context.Context, id string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByPlatformID(ctx context.Context, platformType, platformID string) (*model.User, error) {
	if m.getByPlatformIDFn != nil {
		return m.getByPlatformIDFn(ctx, platformType, platformID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, admins bool, dir repository.SortDirection) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx, admins, dir)
	}
	return nil, nil
}

func (m *mockUserRepo) Count(ctx context.Context, admins bool) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, admins)
	}
	return 0, nil
}

func (m *mockUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

// mockStreamRepo — мок StreamRepository.
type mockStreamRepo struct {
	createFn  func(ctx context.Context, s *model.Stream) error
	getByIDFn func(ctx context.Context, id string) (*model.Stream, error)
	listFn    func(ctx context.Context, p repository.StreamListParams) ([]*model.Stream, error)
	updateFn  func(ctx context.Context, id string, fields map[string]any) (*model.Stream, error)
	existsFn  func(ctx context.Context, id string) (bool, error)
}

func (m *mockStreamRepo) Create(ctx context.Context, s *model.Stream) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockStreamRepo) GetByID(ctx context.Context, id string) (*model.Stream, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockStreamRepo) List(ctx context.Context, p repository.StreamListParams) ([]*model.Stream, error) {
	if m.listFn != nil {
		return m.listFn(ctx, p)
	}
	return nil, nil
}

func (m *mockStreamRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.Stream, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, repository.ErrNotFound
}

func (m *mockStreamRepo) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

// mockViewRepo — мок ViewRepository.
type mockViewRepo struct {
	openFn              func(ctx context.Context, v *model.View) error
	closeFn             func(ctx context.Context, userID, streamID string) error
	listActiveViewersFn func(ctx context.Context, streamID string) ([]*model.User, error)
	countActiveFn       func(ctx context.Context, streamID string) (int, error)
}

func (m *mockViewRepo) Open(ctx context.Context, v *model.View) error {
	if m.openFn != nil {
		return m.openFn(ctx, v)
	}
	return nil
}

func (m *mockViewRepo) Close(ctx context.Context, userID, streamID string) error {
	if m.closeFn != nil {
		return m.closeFn(ctx, userID, streamID)
	}
	return nil
}

func (m *mockViewRepo) ListActiveViewers(ctx context.Context, streamID string) ([]*model.User, error) {
	if m.listActiveViewersFn != nil {
		return m.listActiveViewersFn(ctx, streamID)
	}
	return nil, nil
}

func (m *mockViewRepo) CountActive(ctx context.Context, streamID string) (int, error) {
	if m.countActiveFn != nil {
		return m.countActiveFn(ctx, streamID)
	}
	return 0, nil
}

// mockSubscriptionRepo — мок SubscriptionRepository.
type mockSubscriptionRepo struct {
	createFn           func(ctx context.Context, sub *model.Subscription) error
	deleteFn           func(ctx context.Context, subscriberID, targetID string) (int64, error)
	existsFn           func(ctx context.Context, subscriberID, targetID string) (bool, error)
	listTargetsFn      func(ctx context.Context, subscriberID string) ([]*model.User, error)
	listSubscribersFn  func(ctx context.Context, targetID string) ([]*model.User, error)
	countTargetsFn     func(ctx context.Context, subscriberID string) (int, error)
	countSubscribersFn func(ctx context.Context, targetID string) (int, error)
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	if m.createFn != nil {
		return m.createFn(ctx, sub)
	}
	return nil
}

func (m *mockSubscriptionRepo) Delete(ctx context.Context, subscriberID, targetID string) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, subscriberID, targetID)
	}
	return 0, nil
}

func (m *mockSubscriptionRepo) Exists(ctx context.Context, subscriberID, targetID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, subscriberID, targetID)
	}
	return false, nil
}

func (m *mockSubscriptionRepo) ListTargets(ctx context.Context, subscriberID string) ([]*model.User, error) {
	if m.listTargetsFn != nil {
		return m.listTargetsFn(ctx, subscriberID)
	}
	return nil, nil
}

func (m *mockSubscriptionRepo) ListSubscribers(ctx context.Context, targetID string) ([]*model.User, error) {
	if m.listSubscribersFn != nil {
		return m.listSubscribersFn(ctx, targetID)
	}
	return nil, nil
}

func (m *mockSubscriptionRepo) CountTargets(ctx context.Context, subscriberID string) (int, error) {
	if m.countTargetsFn != nil {
		return m.countTargetsFn(ctx, subscriberID)
	}
	return 0, nil
}

func (m *mockSubscriptionRepo) CountSubscribers(ctx context.Context, targetID string) (int, error) {
	if m.countSubscribersFn != nil {
		return m.countSubscribersFn(ctx, targetID)
	}
	return 0, nil
}

// mockCommentRepo — мок CommentRepository.
type mockCommentRepo struct {
	createFn       func(ctx context.Context, c *model.Comment) error
	listByStreamFn func(ctx context.Context, streamID string) ([]*model.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil
}

func (m *mockCommentRepo) ListByStream(ctx context.Context, streamID string) ([]*model.Comment, error) {
	if m.listByStreamFn != nil {
		return m.listByStreamFn(ctx, streamID)
	}
	return nil, nil
}
