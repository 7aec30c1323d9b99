package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/strimly/data-module/internal/domain/model"
	"github.com/strimly/data-module/internal/repository"
)

// TestUserService_Create проверяет создание пользователя:
// пароль хэшируется bcrypt, открытый текст не сохраняется.
func TestUserService_Create(t *testing.T) {
	var saved *model.User
	repo := &mockUserRepo{
		createFn: func(_ context.Context, u *model.User) error {
			saved = u
			return nil
		},
	}

	svc := NewUserService(repo, slog.Default())
	u, err := svc.Create(context.Background(), NewUser{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Create ошибка: %v", err)
	}

	if u.ID == "" {
		t.Error("ID не сгенерирован")
	}
	if saved.PasswordHash == "s3cret" {
		t.Error("пароль сохранён открытым текстом")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("bcrypt-хэш не соответствует паролю: %v", err)
	}
}

// TestUserService_Create_Validation проверяет отказ на неполных данных.
func TestUserService_Create_Validation(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, slog.Default())

	platformType := "twitch"
	bad := []NewUser{
		{Email: "a@b.c", Password: "x"},
		{Username: "alice", Password: "x"},
		{Username: "alice", Email: "a@b.c"},
		{Username: "alice", Email: "a@b.c", Password: "x", PlatformType: &platformType},
	}
	for _, nu := range bad {
		if _, err := svc.Create(context.Background(), nu); !errors.Is(err, ErrValidation) {
			t.Errorf("Create(%+v): ожидался ErrValidation, получено: %v", nu, err)
		}
	}
}

// TestUserService_Create_Conflict проверяет маппинг конфликта уникальности.
func TestUserService_Create_Conflict(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return repository.ErrConflict
		},
	}

	svc := NewUserService(repo, slog.Default())
	_, err := svc.Create(context.Background(), NewUser{
		Username: "alice", Email: "a@b.c", Password: "x",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("ожидался ErrConflict, получено: %v", err)
	}
}

// TestUserService_Authenticate проверяет аутентификацию:
// верный пароль — пользователь, неверный — ErrNotFound,
// неотличимый от отсутствующего пользователя.
func TestUserService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt ошибка: %v", err)
	}

	repo := &mockUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*model.User, error) {
			if username == "alice" {
				return &model.User{ID: "u-1", Username: "alice", PasswordHash: string(hash)}, nil
			}
			return nil, repository.ErrNotFound
		},
	}

	svc := NewUserService(repo, slog.Default())

	u, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate ошибка: %v", err)
	}
	if u.ID != "u-1" {
		t.Errorf("ID = %q, ожидался u-1", u.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Errorf("неверный пароль: ожидался ErrNotFound, получено: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody", "s3cret"); !errors.Is(err, ErrNotFound) {
		t.Errorf("неизвестный пользователь: ожидался ErrNotFound, получено: %v", err)
	}
}

// TestUserService_Update_InvalidColumn проверяет маппинг отказа
// валидации change-set.
func TestUserService_Update_InvalidColumn(t *testing.T) {
	repo := &mockUserRepo{
		updateFn: func(_ context.Context, _ string, _ map[string]any) (*model.User, error) {
			return nil, repository.ErrInvalidColumn
		},
	}

	svc := NewUserService(repo, slog.Default())
	_, err := svc.Update(context.Background(), "u-1", map[string]any{"is_superadmin": true})
	if !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("ожидался ErrInvalidColumn, получено: %v", err)
	}
}

// TestUserService_List проверяет перевод токена направления
// и отказ на нераспознанном токене.
func TestUserService_List(t *testing.T) {
	var gotDir repository.SortDirection
	repo := &mockUserRepo{
		listFn: func(_ context.Context, admins bool, dir repository.SortDirection) ([]*model.User, error) {
			if admins {
				t.Error("admins = true, ожидался false")
			}
			gotDir = dir
			return []*model.User{{ID: "u-1"}}, nil
		},
	}

	svc := NewUserService(repo, slog.Default())

	users, err := svc.List(context.Background(), false, "asc")
	if err != nil {
		t.Fatalf("List ошибка: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("len = %d, ожидался 1", len(users))
	}
	if gotDir != repository.SortAsc {
		t.Errorf("dir = %q, ожидался ASC", gotDir)
	}

	if _, err := svc.List(context.Background(), false, "upside-down"); !errors.Is(err, ErrValidation) {
		t.Errorf("ожидался ErrValidation, получено: %v", err)
	}
}

// TestUserService_GetByID_NotFound проверяет маппинг отсутствующей записи.
func TestUserService_GetByID_NotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, slog.Default())
	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидался ErrNotFound, получено: %v", err)
	}
}
