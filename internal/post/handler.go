package post

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blogify/backend/internal/apperr"
	"github.com/blogify/backend/internal/middleware"
	"github.com/blogify/backend/internal/models"
	"github.com/blogify/backend/internal/store"
)

// maxImageSize bounds uploaded cover images.
const maxImageSize = 4 << 20 // 4 MiB

// PostStore defines the persistence the post handlers need.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, f store.PostFilter) ([]models.Post, int64, int64, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore defines the object storage for post cover images.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds the post HTTP handlers.
type Handler struct {
	posts  PostStore
	images ImageStore
	logger *logrus.Logger
}

func NewHandler(posts PostStore, images ImageStore, logger *logrus.Logger) *Handler {
	return &Handler{posts: posts, images: images, logger: logger}
}

// Create handles POST /api/post/create. Admin only (enforced by middleware).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.Unauthorized("not authenticated"))
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		apperr.WriteError(w, apperr.Validation("title and content are required"))
		return
	}

	p := &models.Post{
		UserID:   claims.UserID,
		Title:    req.Title,
		Slug:     Slugify(req.Title),
		Content:  req.Content,
		Image:    req.Image,
		Category: req.Category,
	}
	if p.Image == "" {
		p.Image = models.DefaultPostImage
	}
	if p.Category == "" {
		p.Category = "uncategorized"
	}

	created, err := h.posts.Create(r.Context(), p)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			apperr.WriteError(w, apperr.Conflict("a post with this title already exists"))
			return
		}
		h.logger.WithError(err).Error("create post failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, created)
}

// GetPosts handles GET /api/post/getposts with optional filters and
// pagination.
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.PostFilter{
		UserID:     q.Get("userId"),
		Category:   q.Get("category"),
		Slug:       q.Get("slug"),
		PostID:     q.Get("postId"),
		SearchTerm: q.Get("searchTerm"),
		StartIndex: atoiDefault(q.Get("startIndex"), 0),
		Limit:      atoiDefault(q.Get("limit"), 9),
		SortAsc:    q.Get("order") == "asc",
	}

	posts, total, lastMonth, err := h.posts.List(r.Context(), f)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.WriteError(w, apperr.NotFound("post not found"))
			return
		}
		h.logger.WithError(err).Error("list posts failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	apperr.WriteJSON(w, http.StatusOK, models.PostList{
		Posts:          posts,
		TotalPosts:     total,
		LastMonthPosts: lastMonth,
	})
}

// Update handles PUT /api/post/updatepost/{postId}/{userId}. The caller must
// be an admin and the owner named in the path.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok || !claims.IsAdmin || claims.UserID != chi.URLParam(r, "userId") {
		apperr.WriteError(w, apperr.Forbidden("you are not allowed to update this post"))
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid request body"))
		return
	}

	fields := map[string]interface{}{}
	if req.Title != "" {
		fields["title"] = req.Title
	}
	if req.Content != "" {
		fields["content"] = req.Content
	}
	if req.Image != "" {
		fields["image"] = req.Image
	}
	if req.Category != "" {
		fields["category"] = req.Category
	}
	if len(fields) == 0 {
		apperr.WriteError(w, apperr.Validation("nothing to update"))
		return
	}

	updated, err := h.posts.Update(r.Context(), chi.URLParam(r, "postId"), fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.WriteError(w, apperr.NotFound("post not found"))
			return
		}
		h.logger.WithError(err).Error("update post failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	apperr.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/post/deletepost/{postId}/{userId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok || !claims.IsAdmin || claims.UserID != chi.URLParam(r, "userId") {
		apperr.WriteError(w, apperr.Forbidden("you are not allowed to delete this post"))
		return
	}

	postID := chi.URLParam(r, "postId")
	p, err := h.posts.FindByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apperr.WriteError(w, apperr.NotFound("post not found"))
			return
		}
		h.logger.WithError(err).Error("load post failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	// Best effort: an orphaned image is not worth failing the delete over.
	if key, ok := imageKey(p.Image); ok {
		if err := h.images.Remove(r.Context(), key); err != nil {
			h.logger.WithError(err).Warn("remove post image failed")
		}
	}

	if err := h.posts.Delete(r.Context(), postID); err != nil {
		h.logger.WithError(err).Error("delete post failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "The post has been deleted"})
}

// UploadImage handles POST /api/post/upload: stores a multipart image in the
// object store and returns the URL it will be served from.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		apperr.WriteError(w, apperr.Validation("image must be smaller than 4MB"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		apperr.WriteError(w, apperr.Validation("image file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apperr.WriteError(w, apperr.Validation("could not read image file"))
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		apperr.WriteError(w, apperr.Validation("file must be an image"))
		return
	}

	key := uuid.New().String() + strings.ToLower(path.Ext(header.Filename))
	if err := h.images.Upload(r.Context(), key, data, contentType); err != nil {
		h.logger.WithError(err).Error("image upload failed")
		apperr.WriteError(w, apperr.Internal())
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, map[string]string{"url": "/api/post/image/" + key})
}

// Image handles GET /api/post/image/{key}, streaming the stored image.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data, contentType, err := h.images.Download(r.Context(), key)
	if err != nil {
		apperr.WriteError(w, apperr.NotFound("image not found"))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// imageKey extracts the object key from an image URL served by this API.
func imageKey(url string) (string, bool) {
	const prefix = "/api/post/image/"
	idx := strings.Index(url, prefix)
	if idx < 0 {
		return "", false
	}
	return url[idx+len(prefix):], true
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
