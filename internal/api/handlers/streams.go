// streams.go — HTTP-обработчики трансляций, сессий просмотра
// и комментариев.
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

// StreamHandler — обработчик трансляций и связанных с ними сущностей.
type StreamHandler struct {
	streams  *service.StreamService
	views    *service.ViewService
	comments *service.CommentService
	logger   *slog.Logger
}

// NewStreamHandler создаёт обработчик трансляций.
func NewStreamHandler(
	streams *service.StreamService,
	views *service.ViewService,
	comments *service.CommentService,
	logger *slog.Logger,
) *StreamHandler {
	return &StreamHandler{
		streams:  streams,
		views:    views,
		comments: comments,
		logger:   logger.With(slog.String("component", "stream_handler")),
	}
}

// streamResponse — представление трансляции в ответах API.
type streamResponse struct {
	ID        string        `json:"id"`
	StreamKey string        `json:"stream_key"`
	Title     string        `json:"title"`
	RoomID    string        `json:"room_id"`
	Live      bool          `json:"live"`
	Streamer  *userResponse `json:"streamer,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

func toStreamResponse(s *model.Stream) streamResponse {
	resp := streamResponse{
		ID:        s.ID,
		StreamKey: s.StreamKey,
		Title:     s.Title,
		RoomID:    s.RoomID,
		Live:      s.Live,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if s.Streamer != nil {
		streamer := toUserResponse(s.Streamer)
		resp.Streamer = &streamer
	}
	return resp
}

// createStreamRequest — тело запроса создания трансляции.
type createStreamRequest struct {
	StreamKey  string `json:"stream_key,omitempty"`
	Title      string `json:"title"`
	RoomID     string `json:"room_id"`
	StreamerID string `json:"streamer_id"`
}

// Create — POST /api/v1/streams.
func (h *StreamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса")
		return
	}

	s, err := h.streams.Create(r.Context(), service.NewStream{
		StreamKey:  req.StreamKey,
		Title:      req.Title,
		RoomID:     req.RoomID,
		StreamerID: req.StreamerID,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStreamResponse(s))
}

// Get — GET /api/v1/streams/{streamID}.
func (h *StreamHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.streams.Get(r.Context(), chi.URLParam(r, "streamID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toStreamResponse(s))
}

// List — GET /api/v1/streams.
// Параметры: sort (time/title), order (asc/desc), state (all/live/done).
func (h *StreamHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	streams, err := h.streams.List(r.Context(), service.ListParams{
		Sort:  q.Get("sort"),
		Order: q.Get("order"),
		State: q.Get("state"),
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	items := make([]streamResponse, 0, len(streams))
	for _, s := range streams {
		items = append(items, toStreamResponse(s))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

// Update — PATCH /api/v1/streams/{streamID}.
// Тело — change-set вида {"колонка": значение}; валидируется
// по схеме записи трансляции.
func (h *StreamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса")
		return
	}

	s, err := h.streams.Update(r.Context(), chi.URLParam(r, "streamID"), fields)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toStreamResponse(s))
}

// --- Сессии просмотра ---

// viewResponse — представление сессии просмотра в ответах API.
type viewResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	StreamID  string `json:"stream_id"`
	StartedAt string `json:"started_at"`
}

// openViewRequest — тело запроса открытия сессии просмотра.
type openViewRequest struct {
	UserID string `json:"user_id"`
}

// OpenView — POST /api/v1/streams/{streamID}/viewers.
func (h *StreamHandler) OpenView(w http.ResponseWriter, r *http.Request) {
	var req openViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса")
		return
	}

	v, err := h.views.Open(r.Context(), req.UserID, chi.URLParam(r, "streamID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, viewResponse{
		ID:        v.ID,
		UserID:    v.UserID,
		StreamID:  v.StreamID,
		StartedAt: v.StartedAt.UTC().Format(time.RFC3339),
	})
}

// CloseView — DELETE /api/v1/streams/{streamID}/viewers/{userID}.
func (h *StreamHandler) CloseView(w http.ResponseWriter, r *http.Request) {
	err := h.views.Close(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "streamID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListViewers — GET /api/v1/streams/{streamID}/viewers.
func (h *StreamHandler) ListViewers(w http.ResponseWriter, r *http.Request) {
	viewers, err := h.views.ListViewers(r.Context(), chi.URLParam(r, "streamID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": toUserResponses(viewers),
		"total": len(viewers),
	})
}

// CountViewers — GET /api/v1/streams/{streamID}/viewers/count.
func (h *StreamHandler) CountViewers(w http.ResponseWriter, r *http.Request) {
	count, err := h.views.CountViewers(r.Context(), chi.URLParam(r, "streamID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// --- Комментарии ---

// commentResponse — представление комментария в ответах API.
type commentResponse struct {
	ID        string        `json:"id"`
	StreamID  string        `json:"stream_id"`
	Content   string        `json:"content"`
	Author    *userResponse `json:"author,omitempty"`
	CreatedAt string        `json:"created_at"`
}

func toCommentResponse(c *model.Comment) commentResponse {
	resp := commentResponse{
		ID:        c.ID,
		StreamID:  c.StreamID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.Author != nil {
		author := toUserResponse(c.Author)
		resp.Author = &author
	}
	return resp
}

// createCommentRequest — тело запроса создания комментария.
// created_at задаёт клиент чата; при отсутствии — время сервера.
type createCommentRequest struct {
	UserID    string     `json:"user_id"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// CreateComment — POST /api/v1/streams/{streamID}/comments.
func (h *StreamHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "некорректное тело запроса")
		return
	}

	createdAt := time.Time{}
	if req.CreatedAt != nil {
		createdAt = *req.CreatedAt
	}

	c, err := h.comments.Create(r.Context(), req.UserID, chi.URLParam(r, "streamID"), req.Content, createdAt)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(c))
}

// ListComments — GET /api/v1/streams/{streamID}/comments.
// Свежие комментарии первыми.
func (h *StreamHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByStream(r.Context(), chi.URLParam(r, "streamID"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	items := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		items = append(items, toCommentResponse(c))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}
