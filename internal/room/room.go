// Пакет room — in-memory контейнер членства чат-комнаты.
// Отображение идентификатора соединения на подключённого клиента;
// без персистентности. Доступ защищён мьютексом — контейнер
// разделяется между горутинами обработчиков.
package room

import (
	"fmt"
	"sync"
)

// Client — подключённый клиент комнаты.
// Реализация уведомляется о собственных входе и выходе.
type Client interface {
	// NotifyJoin вызывается после регистрации клиента в комнате.
	NotifyJoin(roomID string)
	// NotifyLeave вызывается после удаления клиента из комнаты.
	NotifyLeave(roomID string)
}

// Room — именованная комната с набором клиентов.
type Room struct {
	id string

	mu      sync.RWMutex
	clients map[string]Client
}

// New создаёт пустую комнату с указанным идентификатором.
func New(id string) *Room {
	return &Room{
		id:      id,
		clients: make(map[string]Client),
	}
}

// ID возвращает идентификатор комнаты.
func (r *Room) ID() string {
	return r.id
}

// Add регистрирует клиента по идентификатору соединения
// и уведомляет его о входе. Повторная регистрация того же
// идентификатора замещает предыдущего клиента.
func (r *Room) Add(connID string, c Client) {
	r.mu.Lock()
	r.clients[connID] = c
	r.mu.Unlock()

	c.NotifyJoin(r.id)
}

// Remove удаляет клиента по идентификатору соединения и уведомляет
// его о выходе. Если клиент не был членом комнаты — ошибка.
func (r *Room) Remove(connID string) error {
	r.mu.Lock()
	c, ok := r.clients[connID]
	if ok {
		delete(r.clients, connID)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("клиент %s не является членом комнаты %s", connID, r.id)
	}

	c.NotifyLeave(r.id)
	return nil
}

// Len возвращает текущее количество клиентов в комнате.
func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
