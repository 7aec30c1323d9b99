// errors.go — ошибки бизнес-логики сервисного слоя.
// Закрытое множество: любая операция возвращает либо значение,
// либо одну из этих ошибок, либо обёрнутую инфраструктурную.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс или ребро).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrInvalidColumn — обновление затрагивает колонки вне объявленной схемы записи.
	ErrInvalidColumn = errors.New("недопустимая колонка в обновлении")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
)
