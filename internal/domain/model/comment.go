package model

import "time"

// Comment — комментарий к трансляции. Неизменяемый: после создания
// нет пути обновления, только чтение списком.
type Comment struct {
	// ID — UUID комментария
	ID string
	// UserID — UUID автора
	UserID string
	// StreamID — UUID трансляции
	StreamID string
	// Content — текст комментария
	Content string
	// CreatedAt — время создания
	CreatedAt time.Time
	// Author — автор (заполняется join-запросами списка, nil в остальных случаях)
	Author *User
}
