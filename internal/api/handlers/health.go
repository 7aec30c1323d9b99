// health.go — liveness/readiness probes и экспорт Prometheus-метрик.
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strimly/data-module/internal/config"
)

const serviceName = "data-module"

// Статусы проверок зависимостей.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
)

// ReadinessChecker — проверка готовности одной зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status, message string)
}

// namedCheck — зарегистрированная проверка зависимости.
type namedCheck struct {
	name    string
	checker ReadinessChecker
}

// HealthHandler отвечает на probe-запросы оркестратора.
// Единственная жёсткая зависимость слоя данных — PostgreSQL:
// без него модуль не готов принимать трафик.
type HealthHandler struct {
	started     time.Time
	checks      []namedCheck
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// pgChecker — проверка PostgreSQL; nil даёт fail в readiness.
func NewHealthHandler(pgChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		started:     time.Now(),
		checks:      []namedCheck{{name: "postgresql", checker: pgChecker}},
		promHandler: promhttp.Handler(),
	}
}

// checkResult — результат опроса зависимости в readiness-ответе.
type checkResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// liveResponse — ответ liveness probe.
type liveResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

// readyResponse — ответ readiness probe.
type readyResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]checkResult `json:"checks"`
}

// HealthLive — liveness probe: процесс жив и отвечает.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, liveResponse{
		Status:        statusOK,
		Service:       serviceName,
		Version:       config.Version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthReady — readiness probe: опрашивает зарегистрированные
// зависимости с замером задержки и агрегирует худший статус.
// fail любой зависимости — 503.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := readyResponse{
		Status:    statusOK,
		Service:   serviceName,
		Version:   config.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]checkResult, len(h.checks)),
	}

	for _, c := range h.checks {
		result := checkResult{Status: statusFail, Message: "не инициализирован"}
		if c.checker != nil {
			begin := time.Now()
			status, message := c.checker.CheckReady()
			result = checkResult{
				Status:    status,
				Message:   message,
				LatencyMS: time.Since(begin).Milliseconds(),
			}
		}
		resp.Checks[c.name] = result
		resp.Status = worseStatus(resp.Status, result.Status)
	}

	code := http.StatusOK
	if resp.Status == statusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// worseStatus возвращает худший из двух статусов (fail > degraded > ok).
func worseStatus(a, b string) string {
	rank := map[string]int{statusOK: 0, statusDegraded: 1, statusFail: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
