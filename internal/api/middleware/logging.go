// logging.go — slog-логирование HTTP-запросов слоя данных.
// Запросы привязываются к шаблону маршрута chi, а не к сырому пути,
// чтобы записи по /api/v1/streams/{streamID} группировались.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// requestLevel выбирает уровень записи по пути и статусу ответа.
// Служебные запросы оркестратора (health, metrics) идут на DEBUG,
// чтобы не засорять лог. 404 для слоя данных — штатный ответ
// lookup-запроса на несуществующую сущность, поэтому остаётся на INFO.
func requestLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400 && status != http.StatusNotFound:
		return slog.LevelWarn
	case strings.HasPrefix(path, "/health/") || path == "/metrics":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// RequestLogger возвращает middleware логирования запросов:
// метод, шаблон маршрута, статус, длительность и объём ответа.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			// Шаблон маршрута известен только после ServeHTTP.
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			logger.LogAttrs(r.Context(), requestLevel(r.URL.Path, status), "HTTP запрос",
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.String("remote_addr", r.RemoteAddr),
			)
		}
		return http.HandlerFunc(fn)
	}
}
