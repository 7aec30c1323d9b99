package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/strimly/data-module/internal/domain/model"
)

// UserRepository — интерфейс CRUD для таблицы users.
type UserRepository interface {
	// Create создаёт нового пользователя.
	Create(ctx context.Context, u *model.User) error
	// GetByID возвращает пользователя по UUID.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail возвращает пользователя по email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByUsername возвращает пользователя по имени.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByPlatformID возвращает пользователя по паре (platform_type, platform_id).
	GetByPlatformID(ctx context.Context, platformType, platformID string) (*model.User, error)
	// Update выполняет частичное обновление: change-set валидируется
	// по model.UserColumns, недопустимая колонка — ErrInvalidColumn.
	Update(ctx context.Context, id string, fields map[string]any) (*model.User, error)
	// Delete удаляет пользователя.
	Delete(ctx context.Context, id string) error
	// List возвращает пользователей, отсортированных по username.
	// admins=true — только администраторы (permissions IS NOT NULL),
	// admins=false — только обычные пользователи.
	List(ctx context.Context, admins bool, dir SortDirection) ([]*model.User, error)
	// Count возвращает количество пользователей с тем же предикатом прав.
	Count(ctx context.Context, admins bool) (int, error)
	// Exists проверяет существование пользователя (fast-path для композитных операций).
	Exists(ctx context.Context, id string) (bool, error)
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, username, email, password_hash,
	platform_type, platform_id, permissions, created_at, updated_at`

// scanUser сканирует строку результата в модель User.
func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.PlatformType, &u.PlatformID, &u.Permissions,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash,
			platform_type, platform_id, permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash,
		u.PlatformType, u.PlatformID, u.Permissions,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username или email уже заняты", ErrConflict)
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.getOne(ctx, query, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return r.getOne(ctx, query, email)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return r.getOne(ctx, query, username)
}

func (r *userRepo) GetByPlatformID(ctx context.Context, platformType, platformID string) (*model.User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE platform_type = $1 AND platform_id = $2`, userColumns)
	return r.getOne(ctx, query, platformType, platformID)
}

// getOne выполняет запрос одной записи с маппингом pgx.ErrNoRows → ErrNotFound.
func (r *userRepo) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	if err := checkUpdateColumns(model.UserColumns, fields); err != nil {
		return nil, err
	}

	// Имена колонок прошли валидацию по allow-list, подстановка в SQL безопасна.
	set := make([]string, 0, len(fields)+1)
	args := []any{id}
	argNum := 2
	for col, val := range fields {
		set = append(set, fmt.Sprintf("%s = $%d", col, argNum))
		args = append(args, val)
		argNum++
	}
	if _, ok := fields["updated_at"]; !ok {
		set = append(set, "updated_at = now()")
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: username или email уже заняты", ErrConflict)
		}
		return nil, fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// permissionsPredicate возвращает предикат прав:
// администраторы — permissions IS NOT NULL, обычные — IS NULL.
func permissionsPredicate(admins bool) string {
	if admins {
		return "permissions IS NOT NULL"
	}
	return "permissions IS NULL"
}

func (r *userRepo) List(ctx context.Context, admins bool, dir SortDirection) ([]*model.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY username %s`, userColumns, permissionsPredicate(admins), dir)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.PlatformType, &u.PlatformID, &u.Permissions,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *userRepo) Count(ctx context.Context, admins bool) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM users WHERE %s`, permissionsPredicate(admins))

	var count int
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}
	return count, nil
}

func (r *userRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки пользователя: %w", err)
	}
	return exists, nil
}
