package auth

import (
	"encoding/json"
	"net/http"

	"github.com/blogify/backend/internal/apperr"
	"github.com/blogify/backend/internal/models"
)

// Handler exposes the credential & session manager over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid request body"))
		return
	}

	if _, err := h.svc.Register(r.Context(), req); err != nil {
		apperr.WriteError(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Signup successful"})
}

// Signin handles POST /api/auth/signin. On success the session token is set
// as an HTTP-only cookie and a sanitized account projection is returned.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req models.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteError(w, apperr.Validation("invalid request body"))
		return
	}

	user, token, err := h.svc.Authenticate(r.Context(), req)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	SetCookie(w, token)
	apperr.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Signin successful",
		"user":    user,
	})
}

// Signout handles POST /api/user/signout by expiring the session cookie.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	ClearCookie(w)
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Signout successful"})
}
