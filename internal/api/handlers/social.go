// social.go — HTTP-обработчики социального графа подписок.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/strimly/data-module/internal/api/errors"
	"github.com/strimly/data-module/internal/service"
)

// SocialHandler — обработчик операций социального графа.
type SocialHandler struct {
	subscriptions *service.SubscriptionService
	logger        *slog.Logger
}

// NewSocialHandler создаёт обработчик социального графа.
func NewSocialHandler(subscriptions *service.SubscriptionService, logger *slog.Logger) *SocialHandler {
	return &SocialHandler{
		subscriptions: subscriptions,
		logger:        logger.With(slog.String("component", "social_handler")),
	}
}

// subscribeRequest — тело запроса создания подписки.
type subscribeRequest struct {
	TargetID string `json:"target_id"`
}

// subscriptionResponse — представление ребра подписки в ответах API.
type subscriptionResponse struct {
	ID           string `json:"id"`
	SubscriberID string `json:"subscriber_id"`
	TargetID     string `json:"target_id"`
	CreatedAt    string `json:"created_at"`
}

// Subscribe — POST /api/v1/users/{userID}/subscriptions.
func (h *SocialHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса")
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), chi.URLParam(r, "userID"), req.TargetID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, subscriptionResponse{
		ID:           sub.ID,
		SubscriberID: sub.SubscriberID,
		TargetID:     sub.TargetID,
		CreatedAt:    sub.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// Unsubscribe — DELETE /api/v1/users/{userID}/subscriptions/{targetID}.
// Возвращает removed=false, если ребра не было: отсутствие подписки
// между существующими пользователями ошибкой не является.
func (h *SocialHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	removed, err := h.subscriptions.Unsubscribe(r.Context(),
		chi.URLParam(r, "userID"), chi.URLParam(r, "targetID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// ListTargets — GET /api/v1/users/{userID}/subscriptions.
func (h *SocialHandler) ListTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.subscriptions.ListTargets(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": toUserResponses(targets),
		"total": len(targets),
	})
}

// ListSubscribers — GET /api/v1/users/{userID}/subscribers.
func (h *SocialHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.subscriptions.ListSubscribers(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": toUserResponses(subscribers),
		"total": len(subscribers),
	})
}

// CountTargets — GET /api/v1/users/{userID}/subscriptions/count.
func (h *SocialHandler) CountTargets(w http.ResponseWriter, r *http.Request) {
	count, err := h.subscriptions.CountTargets(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// CountSubscribers — GET /api/v1/users/{userID}/subscribers/count.
func (h *SocialHandler) CountSubscribers(w http.ResponseWriter, r *http.Request) {
	count, err := h.subscriptions.CountSubscribers(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
