package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/strimly/data-module/internal/domain/model"
)

// StreamListParams — параметры спискового запроса трансляций.
// Заполняются сервисным слоем из caller-facing токенов (см. service.ListParams).
type StreamListParams struct {
	// SortColumn — колонка первичной сортировки (created_at или title)
	SortColumn string
	// Direction — направление первичной сортировки
	Direction SortDirection
	// Live — фильтр состояния: nil — все, true — идущие, false — завершённые
	Live *bool
}

// StreamRepository — интерфейс доступа к таблице streams.
type StreamRepository interface {
	// Create создаёт трансляцию. Владельца не проверяет —
	// композитная операция сервиса выполняет проверку в той же транзакции.
	Create(ctx context.Context, s *model.Stream) error
	// GetByID возвращает трансляцию вместе со стримером (join).
	GetByID(ctx context.Context, id string) (*model.Stream, error)
	// List возвращает трансляции со стримерами. При сортировке не по
	// created_at добавляется вторичная сортировка created_at DESC —
	// детерминированный, смещённый к свежим порядок при равенстве ключей.
	List(ctx context.Context, p StreamListParams) ([]*model.Stream, error)
	// Update выполняет частичное обновление: change-set валидируется
	// по model.StreamColumns, недопустимая колонка — ErrInvalidColumn.
	Update(ctx context.Context, id string, fields map[string]any) (*model.Stream, error)
	// Exists проверяет существование трансляции.
	Exists(ctx context.Context, id string) (bool, error)
}

// streamRepo — реализация StreamRepository.
type streamRepo struct {
	db DBTX
}

// NewStreamRepository создаёт репозиторий трансляций.
func NewStreamRepository(db DBTX) StreamRepository {
	return &streamRepo{db: db}
}

const streamColumns = `s.id, s.stream_key, s.title, s.room_id, s.live, s.streamer_id,
	s.created_at, s.updated_at`

// scanStreamWithStreamer сканирует строку join-запроса streams × users.
func scanStreamWithStreamer(row pgx.Row) (*model.Stream, error) {
	s := &model.Stream{Streamer: &model.User{}}
	u := s.Streamer
	err := row.Scan(
		&s.ID, &s.StreamKey, &s.Title, &s.RoomID, &s.Live, &s.StreamerID,
		&s.CreatedAt, &s.UpdatedAt,
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.PlatformType, &u.PlatformID, &u.Permissions,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return s, err
}

func (r *streamRepo) Create(ctx context.Context, s *model.Stream) error {
	query := `
		INSERT INTO streams (id, stream_key, title, room_id, live, streamer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		s.ID, s.StreamKey, s.Title, s.RoomID, s.Live, s.StreamerID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stream_key уже занят", ErrConflict)
		}
		return fmt.Errorf("ошибка создания трансляции: %w", err)
	}
	return nil
}

func (r *streamRepo) GetByID(ctx context.Context, id string) (*model.Stream, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM streams s
		JOIN users u ON u.id = s.streamer_id
		WHERE s.id = $1`, streamColumns, streamerColumns)

	s, err := scanStreamWithStreamer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения трансляции: %w", err)
	}
	return s, nil
}

const streamerColumns = `u.id, u.username, u.email, u.password_hash,
	u.platform_type, u.platform_id, u.permissions, u.created_at, u.updated_at`

func (r *streamRepo) List(ctx context.Context, p StreamListParams) ([]*model.Stream, error) {
	var conditions []string
	var args []any

	if p.Live != nil {
		conditions = append(conditions, "s.live = $1")
		args = append(args, *p.Live)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Вторичная сортировка по created_at DESC для детерминированного
	// порядка, когда первичный ключ сортировки — не created_at.
	orderBy := fmt.Sprintf("s.%s %s", p.SortColumn, p.Direction)
	if p.SortColumn != "created_at" {
		orderBy += ", s.created_at DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM streams s
		JOIN users u ON u.id = s.streamer_id
		%s
		ORDER BY %s`, streamColumns, streamerColumns, where, orderBy)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка трансляций: %w", err)
	}
	defer rows.Close()

	var result []*model.Stream
	for rows.Next() {
		s := &model.Stream{Streamer: &model.User{}}
		u := s.Streamer
		if err := rows.Scan(
			&s.ID, &s.StreamKey, &s.Title, &s.RoomID, &s.Live, &s.StreamerID,
			&s.CreatedAt, &s.UpdatedAt,
			&u.ID, &u.Username, &u.Email, &u.PasswordHash,
			&u.PlatformType, &u.PlatformID, &u.Permissions,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования трансляции: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *streamRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.Stream, error) {
	if err := checkUpdateColumns(model.StreamColumns, fields); err != nil {
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

	query := fmt.Sprintf(`
		UPDATE streams SET %s WHERE id = $1
		RETURNING id, stream_key, title, room_id, live, streamer_id, created_at, updated_at`,
		strings.Join(set, ", "))

	s := &model.Stream{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.StreamKey, &s.Title, &s.RoomID, &s.Live, &s.StreamerID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: stream_key уже занят", ErrConflict)
		}
		return nil, fmt.Errorf("ошибка обновления трансляции: %w", err)
	}
	return s, nil
}

func (r *streamRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM streams WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки трансляции: %w", err)
	}
	return exists, nil
}
