// users.go — сервис аккаунтов пользователей.
// Создание с bcrypt-хэшированием пароля, поиск по идентификаторам,
// аутентификация, частичное обновление, списки и подсчёты
// с разделением обычные/администраторы.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/strimly/data-module/internal/domain/model"
	"github.com/strimly/data-module/internal/repository"
)

// NewUser — атрибуты создаваемого пользователя.
type NewUser struct {
	Username string
	Email    string
	// Password — пароль открытым текстом; хранится только bcrypt-хэш
	Password     string
	PlatformType *string
	PlatformID   *string
	Permissions  *int
}

// UserService — сервис аккаунтов пользователей.
type UserService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewUserService создаёт сервис пользователей.
func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

// Create создаёт нового пользователя. Конфликт уникальности
// username/email — ErrConflict.
func (s *UserService) Create(ctx context.Context, nu NewUser) (*model.User, error) {
	if nu.Username == "" || nu.Email == "" || nu.Password == "" {
		return nil, fmt.Errorf("%w: username, email и password обязательны", ErrValidation)
	}
	if (nu.PlatformType == nil) != (nu.PlatformID == nil) {
		return nil, fmt.Errorf("%w: platform_type и platform_id задаются только парой", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: string(hash),
		PlatformType: nu.PlatformType,
		PlatformID:   nu.PlatformID,
		Permissions:  nu.Permissions,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: username или email уже заняты", ErrConflict)
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	s.logger.Info("Пользователь создан",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
	)

	return u, nil
}

// GetByID возвращает пользователя по UUID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.get(ctx, func(ctx context.Context) (*model.User, error) {
		return s.userRepo.GetByID(ctx, id)
	})
}

// GetByEmail возвращает пользователя по email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.get(ctx, func(ctx context.Context) (*model.User, error) {
		return s.userRepo.GetByEmail(ctx, email)
	})
}

// GetByUsername возвращает пользователя по имени.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.get(ctx, func(ctx context.Context) (*model.User, error) {
		return s.userRepo.GetByUsername(ctx, username)
	})
}

// GetByPlatformID возвращает пользователя по паре (platform_type, platform_id).
func (s *UserService) GetByPlatformID(ctx context.Context, platformType, platformID string) (*model.User, error) {
	return s.get(ctx, func(ctx context.Context) (*model.User, error) {
		return s.userRepo.GetByPlatformID(ctx, platformType, platformID)
	})
}

// get выполняет одиночный поиск с маппингом ошибок репозитория.
func (s *UserService) get(ctx context.Context, fn func(ctx context.Context) (*model.User, error)) (*model.User, error) {
	u, err := fn(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

// Authenticate возвращает пользователя по имени и паролю.
// Отсутствующий пользователь и неверный пароль неразличимы для
// вызывающей стороны — оба случая дают ErrNotFound.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Update выполняет частичное обновление пользователя.
// Change-set валидируется по объявленной схеме записи:
// недопустимая колонка — ErrInvalidColumn, записи не происходит.
func (s *UserService) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	u, err := s.userRepo.Update(ctx, id, fields)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidColumn):
			return nil, fmt.Errorf("%w: %v", ErrInvalidColumn, err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: username или email уже заняты", ErrConflict)
		}
		return nil, fmt.Errorf("обновление пользователя: %w", err)
	}

	s.logger.Info("Пользователь обновлён", slog.String("user_id", id))
	return u, nil
}

// Delete удаляет пользователя.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление пользователя: %w", err)
	}

	s.logger.Info("Пользователь удалён", slog.String("user_id", id))
	return nil
}

// List возвращает пользователей, отсортированных по username.
// admins=true — только администраторы (permissions IS NOT NULL).
// order — caller-facing токен направления (asc/desc, пустой = desc).
func (s *UserService) List(ctx context.Context, admins bool, order string) ([]*model.User, error) {
	dir, err := mapOrder(order)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx, admins, dir)
	if err != nil {
		return nil, fmt.Errorf("получение списка пользователей: %w", err)
	}
	return users, nil
}

// Count возвращает количество пользователей с тем же предикатом прав.
func (s *UserService) Count(ctx context.Context, admins bool) (int, error) {
	count, err := s.userRepo.Count(ctx, admins)
	if err != nil {
		return 0, fmt.Errorf("подсчёт пользователей: %w", err)
	}
	return count, nil
}
