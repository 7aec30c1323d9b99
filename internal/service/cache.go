// cache.go — LRU-кэш трансляций с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strimly/data-module/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_stream_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш трансляций.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dm_stream_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша трансляций.",
	})
)

// StreamCache — LRU-кэш трансляций с автоматическим TTL.
// Каждый экземпляр Data Module имеет собственный in-memory кэш.
type StreamCache struct {
	cache *expirable.LRU[string, *model.Stream]
}

// NewStreamCache создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewStreamCache(maxSize int, ttl time.Duration) *StreamCache {
	cache := expirable.NewLRU[string, *model.Stream](maxSize, nil, ttl)
	return &StreamCache{cache: cache}
}

// Get возвращает трансляцию из кэша по ID.
// Возвращает (запись, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *StreamCache) Get(streamID string) (*model.Stream, bool) {
	val, ok := c.cache.Get(streamID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *StreamCache) Set(streamID string, stream *model.Stream) {
	c.cache.Add(streamID, stream)
}

// Delete удаляет запись из кэша (инвалидация при обновлении).
func (c *StreamCache) Delete(streamID string) {
	c.cache.Remove(streamID)
}
