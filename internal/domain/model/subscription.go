package model

import "time"

// Subscription — направленное ребро «подписчик → стример».
// Уникально на упорядоченную пару, петли запрещены; оба инварианта
// закреплены ограничениями таблицы subscriptions
// (UNIQUE (subscriber_id, target_id), CHECK subscriber_id <> target_id).
type Subscription struct {
	// ID — UUID ребра
	ID string
	// SubscriberID — UUID подписчика
	SubscriberID string
	// TargetID — UUID стримера, на которого подписались
	TargetID string
	// CreatedAt — время создания подписки
	CreatedAt time.Time
}
