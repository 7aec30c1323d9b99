// Пакет model — доменные модели Data Module платформы Strimly.
// Структуры отражают таблицы PostgreSQL один к одному; указатели —
// для nullable-колонок.
package model

import "time"

// User — аккаунт пользователя платформы.
// Хранится в таблице users.
type User struct {
	// ID — UUID пользователя
	ID string
	// Username — уникальное имя пользователя
	Username string
	// Email — уникальный адрес электронной почты
	Email string
	// PasswordHash — bcrypt-хэш пароля
	PasswordHash string
	// PlatformType — тип внешней платформы (nil, если регистрация локальная)
	PlatformType *string
	// PlatformID — идентификатор во внешней платформе (nil вместе с PlatformType)
	PlatformID *string
	// Permissions — битовая маска прав. nil — обычный пользователь,
	// любое ненулевое значение — администратор.
	Permissions *int
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// IsAdmin возвращает true, если пользователь — администратор.
func (u *User) IsAdmin() bool {
	return u.Permissions != nil
}

// UserColumns — колонки таблицы users, допустимые в частичном обновлении.
// Валидация change-set идёт по этому множеству (см. repository).
var UserColumns = map[string]struct{}{
	"username":      {},
	"email":         {},
	"password_hash": {},
	"platform_type": {},
	"platform_id":   {},
	"permissions":   {},
	"updated_at":    {},
}
