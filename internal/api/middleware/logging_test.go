package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// TestRequestLevel проверяет выбор уровня записи: служебные запросы
// на DEBUG, 404 — штатный ответ lookup-запроса, остаётся на INFO.
func TestRequestLevel(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		want   slog.Level
	}{
		{"успех", "/api/v1/users", http.StatusOK, slog.LevelInfo},
		{"lookup мимо", "/api/v1/users/42", http.StatusNotFound, slog.LevelInfo},
		{"конфликт", "/api/v1/users", http.StatusConflict, slog.LevelWarn},
		{"ошибка сервера", "/api/v1/streams", http.StatusInternalServerError, slog.LevelError},
		{"liveness", "/health/live", http.StatusOK, slog.LevelDebug},
		{"метрики", "/metrics", http.StatusOK, slog.LevelDebug},
		{"отказ readiness", "/health/ready", http.StatusServiceUnavailable, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requestLevel(tt.path, tt.status); got != tt.want {
				t.Errorf("requestLevel(%q, %d) = %v, ожидалось %v", tt.path, tt.status, got, tt.want)
			}
		})
	}
}

// TestRequestLogger_RoutePattern проверяет, что запись содержит шаблон
// маршрута chi, а не только сырой путь с идентификатором.
func TestRequestLogger_RoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	router := chi.NewRouter()
	router.Use(RequestLogger(logger))
	router.Get("/api/v1/streams/{streamID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/streams/s-1", nil))

	out := buf.String()
	if !strings.Contains(out, "route=/api/v1/streams/{streamID}") {
		t.Errorf("запись не содержит шаблон маршрута: %s", out)
	}
	if !strings.Contains(out, "status=200") {
		t.Errorf("запись не содержит статус: %s", out)
	}
}
