package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogify/backend/internal/apperr"
	"github.com/blogify/backend/internal/auth"
	"github.com/blogify/backend/internal/middleware"
	"github.com/blogify/backend/internal/models"
	"github.com/blogify/backend/internal/store"
)

// UserStore defines the persistence the user handlers need.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, startIndex, limit int, sortAsc bool) ([]models.User, int64, int64, error)
}

// Handler holds the user profile and admin HTTP handlers.
type Handler struct {
	users  UserStore
	logger *logrus.Logger
}

func NewHandler(users UserStore, logger *logrus.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// Get handles GET /api/user/{userId}. Public: used to render comment authors.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.FindByID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.WriteError(w, apperr.NotFound("user not found"))
			return
		}
		h.logger.WithError(err).Error("load user failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}
	apperr.WriteJSON(w, http.StatusOK, u)
}

// Update handles PUT /api/user/update/{userId}. Accounts may only update
// themselves. Changed fields are re-validated; a new password is re-hashed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok || claims.UserID != chi.URLParam(r, "userId") {
		apperr.WriteError(w, apperr.Forbidden("you are not allowed to update this user"))
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid request body"))
		return
	}

	fields := map[string]interface{}{}
	if username := strings.TrimSpace(req.Username); username != "" {
		if err := auth.ValidateUsername(username); err != nil {
			apperr.WriteError(w, err)
			return
		}
		fields["username"] = username
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		if err := auth.ValidateEmail(email); err != nil {
			apperr.WriteError(w, err)
			return
		}
		fields["email"] = email
	}
	if req.Password != "" {
		if err := auth.ValidatePassword(req.Password); err != nil {
			apperr.WriteError(w, err)
			return
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.logger.WithError(err).Error("password hashing failed")
			apperr.WriteError(w, apperr.Internal())
			return
		}
		fields["password"] = string(hashed)
	}
	if req.ProfilePicture != "" {
		fields["profile_picture"] = req.ProfilePicture
	}
	if len(fields) == 0 {
		apperr.WriteError(w, apperr.Validation("nothing to update"))
		return
	}

	updated, err := h.users.Update(r.Context(), claims.UserID, fields)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			apperr.WriteError(w, apperr.NotFound("user not found"))
		case errors.Is(err, store.ErrDuplicateKey):
			apperr.WriteError(w, apperr.Conflict("username or email already exists"))
		default:
			h.logger.WithError(err).Error("update user failed")
			apperr.WriteError(w, apperr.Internal())
		}
		return
	}

	apperr.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/user/delete/{userId}. Self or admin.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	userID := chi.URLParam(r, "userId")
	if !ok || (claims.UserID != userID && !claims.IsAdmin) {
		apperr.WriteError(w, apperr.Forbidden("you are not allowed to delete this user"))
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.WriteError(w, apperr.NotFound("user not found"))
			return
		}
		h.logger.WithError(err).Error("delete user failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	if claims.UserID == userID {
		auth.ClearCookie(w)
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "User has been deleted"})
}

// GetUsers handles GET /api/user/getusers. Admin only (enforced by
// middleware). Password hashes are excluded by the model's JSON encoding.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	startIndex := atoiDefault(q.Get("startIndex"), 0)
	limit := atoiDefault(q.Get("limit"), 9)
	sortAsc := q.Get("sort") == "asc"

	users, total, lastMonth, err := h.users.List(r.Context(), startIndex, limit, sortAsc)
	if err != nil {
		h.logger.WithError(err).Error("list users failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}
	if users == nil {
		users = []models.User{}
	}

	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users":          users,
		"totalUsers":     total,
		"lastMonthUsers": lastMonth,
	})
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
