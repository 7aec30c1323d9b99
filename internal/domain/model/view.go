package model

import "time"

// View — сессия просмотра трансляции одним зрителем.
// Сессия с LeftAt == nil — активная («зритель сейчас смотрит»).
// На пару (user, stream) допускается не более одной активной сессии —
// это гарантирует частичный уникальный индекс в БД.
type View struct {
	// ID — UUID сессии просмотра
	ID string
	// UserID — UUID зрителя
	UserID string
	// StreamID — UUID трансляции
	StreamID string
	// StartedAt — время начала просмотра
	StartedAt time.Time
	// LeftAt — время окончания просмотра; nil — сессия активна
	LeftAt *time.Time
}

// Active возвращает true, если сессия просмотра ещё не закрыта.
func (v *View) Active() bool {
	return v.LeftAt == nil
}
