// users.go — HTTP-обработчики операций с пользователями.
// Ответы используют DTO: bcrypt-хэш пароля наружу не отдаётся.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/strimly/data-module/internal/api/errors"
	"github.com/strimly/data-module/internal/domain/model"
	"github.com/strimly/data-module/internal/service"
)

// UserHandler — обработчик операций с пользователями.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler создаёт обработчик пользователей.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// userResponse — представление пользователя в ответах API.
type userResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PlatformType *string `json:"platform_type,omitempty"`
	PlatformID   *string `json:"platform_id,omitempty"`
	Admin        bool    `json:"admin"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PlatformType: u.PlatformType,
		PlatformID:   u.PlatformID,
		Admin:        u.IsAdmin(),
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toUserResponses(users []*model.User) []userResponse {
	result := make([]userResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	return result
}

// createUserRequest — тело запроса создания пользователя.
type createUserRequest struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	PlatformType *string `json:"platform_type,omitempty"`
	PlatformID   *string `json:"platform_id,omitempty"`
	Permissions  *int    `json:"permissions,omitempty"`
}

// Create — POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса")
		return
	}

	u, err := h.users.Create(r.Context(), service.NewUser{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		PlatformType: req.PlatformType,
		PlatformID:   req.PlatformID,
		Permissions:  req.Permissions,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Get — GET /api/v1/users/{userID}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Lookup — GET /api/v1/users/lookup.
// Поиск по одному из ключей: email, username или пара
// platform_type + platform_id.
func (h *UserHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		u   *model.User
		err error
	)
	switch {
	case q.Get("email") != "":
		u, err = h.users.GetByEmail(r.Context(), q.Get("email"))
	case q.Get("username") != "":
		u, err = h.users.GetByUsername(r.Context(), q.Get("username"))
	case q.Get("platform_type") != "" && q.Get("platform_id") != "":
		u, err = h.users.GetByPlatformID(r.Context(), q.Get("platform_type"), q.Get("platform_id"))
	default:
		apierrors.ValidationError(w, "требуется email, username или пара platform_type+platform_id")
		return
	}
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// authenticateRequest — тело запроса аутентификации.
type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate — POST /api/v1/users/authenticate.
// Неверный пароль и неизвестный пользователь дают одинаковый 404.
func (h *UserHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Update — PATCH /api/v1/users/{userID}.
// Тело — change-set вида {"колонка": значение}; валидируется
// по схеме записи пользователя.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса")
		return
	}

	u, err := h.users.Update(r.Context(), chi.URLParam(r, "userID"), fields)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// Delete — DELETE /api/v1/users/{userID}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List — GET /api/v1/users.
// Параметры: admins=true — только администраторы, order — asc/desc.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	admins := r.URL.Query().Get("admins") == "true"

	users, err := h.users.List(r.Context(), admins, r.URL.Query().Get("order"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": toUserResponses(users),
		"total": len(users),
	})
}

// Count — GET /api/v1/users/count.
func (h *UserHandler) Count(w http.ResponseWriter, r *http.Request) {
	admins := r.URL.Query().Get("admins") == "true"

	count, err := h.users.Count(r.Context(), admins)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
