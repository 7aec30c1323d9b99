package model

import "time"

// Stream — трансляция. Принадлежит ровно одному пользователю (стримеру)
// и не меняет владельца. Хранится в таблице streams.
type Stream struct {
	// ID — UUID трансляции
	ID string
	// StreamKey — ключ трансляции (для ingest-сервера)
	StreamKey string
	// Title — заголовок трансляции
	Title string
	// RoomID — идентификатор чат-комнаты трансляции
	RoomID string
	// Live — идёт ли трансляция прямо сейчас
	Live bool
	// StreamerID — UUID владельца
	StreamerID string
	// Streamer — владелец (заполняется join-запросами, nil в остальных случаях)
	Streamer *User
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time
}

// StreamColumns — колонки таблицы streams, допустимые в частичном обновлении.
// streamer_id отсутствует намеренно: трансляция не меняет владельца.
var StreamColumns = map[string]struct{}{
	"stream_key": {},
	"title":      {},
	"room_id":    {},
	"live":       {},
	"updated_at": {},
}
