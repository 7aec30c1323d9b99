// handler.go — основной обработчик API Data Module.
// Объединяет health и бизнес-обработчики и собирает дерево маршрутов.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/strimly/data-module/internal/api/errors"
	"github.com/strimly/data-module/internal/service"
)

// APIHandler — основной обработчик API Data Module.
// Делегирует запросы в сервисный слой.
type APIHandler struct {
	health  *HealthHandler
	users   *UserHandler
	streams *StreamHandler
	social  *SocialHandler
	logger  *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	users *UserHandler,
	streams *StreamHandler,
	social *SocialHandler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:  health,
		users:   users,
		streams: streams,
		social:  social,
		logger:  logger.With(slog.String("component", "api_handler")),
	}
}

// Routes регистрирует все маршруты API на переданном роутере.
func (h *APIHandler) Routes(r chi.Router) {
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.users.Create)
			r.Get("/", h.users.List)
			r.Get("/count", h.users.Count)
			r.Get("/lookup", h.users.Lookup)
			r.Post("/authenticate", h.users.Authenticate)

			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", h.users.Get)
				r.Patch("/", h.users.Update)
				r.Delete("/", h.users.Delete)

				r.Get("/subscriptions", h.social.ListTargets)
				r.Post("/subscriptions", h.social.Subscribe)
				r.Get("/subscriptions/count", h.social.CountTargets)
				r.Delete("/subscriptions/{targetID}", h.social.Unsubscribe)
				r.Get("/subscribers", h.social.ListSubscribers)
				r.Get("/subscribers/count", h.social.CountSubscribers)
			})
		})

		r.Route("/streams", func(r chi.Router) {
			r.Post("/", h.streams.Create)
			r.Get("/", h.streams.List)

			r.Route("/{streamID}", func(r chi.Router) {
				r.Get("/", h.streams.Get)
				r.Patch("/", h.streams.Update)

				r.Get("/viewers", h.streams.ListViewers)
				r.Post("/viewers", h.streams.OpenView)
				r.Get("/viewers/count", h.streams.CountViewers)
				r.Delete("/viewers/{userID}", h.streams.CloseView)

				r.Get("/comments", h.streams.ListComments)
				r.Post("/comments", h.streams.CreateComment)
			})
		})
	})
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondServiceError переводит ошибку сервисного слоя в HTTP-ответ.
// Закрытое множество ошибок сервиса отображается на 400/404/409,
// всё остальное — 500 с логированием полной ошибки.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidColumn):
		apierrors.InvalidColumn(w, err.Error())
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	default:
		logger.Error("Внутренняя ошибка", slog.String("error", err.Error()))
		apierrors.InternalError(w, "внутренняя ошибка сервера")
	}
}
