package comment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/blogify/backend/internal/apperr"
	"github.com/blogify/backend/internal/middleware"
	"github.com/blogify/backend/internal/models"
	"github.com/blogify/backend/internal/store"
)

const maxCommentLen = 200

// CommentStore defines the persistence the comment handlers need.
type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	List(ctx context.Context, startIndex, limit int, sortAsc bool) ([]models.Comment, int64, int64, error)
	Update(ctx context.Context, id, content string) (*models.Comment, error)
	SetLikes(ctx context.Context, id string, likes []string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// Handler holds the comment HTTP handlers.
type Handler struct {
	comments CommentStore
	logger   *logrus.Logger
}

func NewHandler(comments CommentStore, logger *logrus.Logger) *Handler {
	return &Handler{comments: comments, logger: logger}
}

// Create handles POST /api/comment/create. The userId in the body must match
// the session subject; commenting as someone else is rejected.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("not authenticated"))
		return
	}

	var req models.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid request body"))
		return
	}
	if req.UserID != claims.UserID {
		apperr.WriteError(w, apperr.Forbidden("you are not allowed to create this comment"))
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" || req.PostID == "" {
		apperr.WriteError(w, apperr.Validation("content and postId are required"))
		return
	}
	if len(content) > maxCommentLen {
		apperr.WriteError(w, apperr.Validation("comment must be at most 200 characters"))
		return
	}

	created, err := h.comments.Create(r.Context(), &models.Comment{
		PostID:  req.PostID,
		UserID:  req.UserID,
		Content: content,
	})
	if err != nil {
		h.logger.WithError(err).Error("create comment failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, created)
}

// GetPostComments handles GET /api/comment/getPostComments/{postId}.
func (h *Handler) GetPostComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.logger.WithError(err).Error("list post comments failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	apperr.WriteJSON(w, http.StatusOK, comments)
}

// Like handles PUT /api/comment/likeComment/{commentId}, toggling the
// caller's like.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("not authenticated"))
		return
	}

	c, err := h.comments.FindByID(r.Context(), chi.URLParam(r, "commentId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.WriteError(w, apperr.NotFound("comment not found"))
			return
		}
		h.logger.WithError(err).Error("load comment failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	likes := make([]string, 0, len(c.Likes)+1)
	liked := false
	for _, id := range c.Likes {
		if id == claims.UserID {
			liked = true
			continue
		}
		likes = append(likes, id)
	}
	if !liked {
		likes = append(likes, claims.UserID)
	}

	updated, err := h.comments.SetLikes(r.Context(), c.ID.Hex(), likes)
	if err != nil {
		h.logger.WithError(err).Error("update comment likes failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	apperr.WriteJSON(w, http.StatusOK, updated)
}

// Edit handles PUT /api/comment/editComment/{commentId}. Author or admin.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("not authenticated"))
		return
	}

	c, err := h.comments.FindByID(r.Context(), chi.URLParam(r, "commentId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.WriteError(w, apperr.NotFound("comment not found"))
			return
		}
		h.logger.WithError(err).Error("load comment failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}
	if c.UserID != claims.UserID && !claims.IsAdmin {
		apperr.WriteError(w, apperr.Forbidden("you are not allowed to edit this comment"))
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid request body"))
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" || len(content) > maxCommentLen {
		apperr.WriteError(w, apperr.Validation("comment must be 1-200 characters"))
		return
	}

	updated, err := h.comments.Update(r.Context(), c.ID.Hex(), content)
	if err != nil {
		h.logger.WithError(err).Error("edit comment failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	apperr.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/comment/deleteComment/{commentId}. Author or
// admin.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("not authenticated"))
		return
	}

	c, err := h.comments.FindByID(r.Context(), chi.URLParam(r, "commentId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.WriteError(w, apperr.NotFound("comment not found"))
			return
		}
		h.logger.WithError(err).Error("load comment failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}
	if c.UserID != claims.UserID && !claims.IsAdmin {
		apperr.WriteError(w, apperr.Forbidden("you are not allowed to delete this comment"))
		return
	}

	if err := h.comments.Delete(r.Context(), c.ID.Hex()); err != nil {
		h.logger.WithError(err).Error("delete comment failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Comment has been deleted"})
}

// GetComments handles GET /api/comment/getcomments. Admin only.
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startIndex := atoiDefault(q.Get("startIndex"), 0)
	limit := atoiDefault(q.Get("limit"), 9)
	sortAsc := q.Get("sort") == "asc"

	comments, total, lastMonth, err := h.comments.List(r.Context(), startIndex, limit, sortAsc)
	if err != nil {
		h.logger.WithError(err).Error("list comments failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	apperr.WriteJSON(w, http.StatusOK, models.CommentList{
		Comments:          comments,
		TotalComments:     total,
		LastMonthComments: lastMonth,
	})
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
