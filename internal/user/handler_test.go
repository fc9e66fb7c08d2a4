package user

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogify/backend/internal/auth"
	"github.com/blogify/backend/internal/middleware"
	"github.com/blogify/backend/internal/models"
	"github.com/blogify/backend/internal/store"
)

type mockUserStore struct {
	users map[string]*models.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User)}
}

func (m *mockUserStore) add(username string) *models.User {
	u := &models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Email:    username + "@example.com",
		Password: "$2a$10$fakehash",
	}
	m.users[u.ID.Hex()] = u
	return u
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if username, ok := fields["username"].(string); ok {
		u.Username = username
	}
	if email, ok := fields["email"].(string); ok {
		u.Email = email
	}
	if password, ok := fields["password"].(string); ok {
		u.Password = password
	}
	return u, nil
}

func (m *mockUserStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserStore) List(ctx context.Context, startIndex, limit int, sortAsc bool) ([]models.User, int64, int64, error) {
	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), int64(len(out)), nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/getusers", h.GetUsers)
	r.Put("/update/{userId}", h.Update)
	r.Delete("/delete/{userId}", h.Delete)
	r.Get("/{userId}", h.Get)
	return r
}

func asUser(req *http.Request, userID string, isAdmin bool) *http.Request {
	claims := &auth.Claims{UserID: userID, Username: "valid_user1", IsAdmin: isAdmin}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func TestGetUser_PublicLookup(t *testing.T) {
	users := newMockUserStore()
	u := users.add("valid_user1")
	h := NewHandler(users, testLogger())
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/"+u.ID.Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "fakehash", "hash must never be serialized")
	assert.Contains(t, rec.Body.String(), "valid_user1")
}

func TestUpdateUser_SelfOnly(t *testing.T) {
	users := newMockUserStore()
	u := users.add("valid_user1")
	h := NewHandler(users, testLogger())
	r := newTestRouter(h)

	body := `{"username":"renamed_user"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/update/"+u.ID.Hex(), bytes.NewBufferString(body)), "someone-else", false)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	users := newMockUserStore()
	u := users.add("valid_user1")
	h := NewHandler(users, testLogger())
	r := newTestRouter(h)

	body := `{"password":"newpass123"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/update/"+u.ID.Hex(), bytes.NewBufferString(body)), u.ID.Hex(), false)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "newpass123", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("newpass123")))
}

func TestUpdateUser_RejectsBadUsername(t *testing.T) {
	users := newMockUserStore()
	u := users.add("valid_user1")
	h := NewHandler(users, testLogger())
	r := newTestRouter(h)

	body := `{"username":"ab"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/update/"+u.ID.Hex(), bytes.NewBufferString(body)), u.ID.Hex(), false)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUser_AdminMayDeleteOthers(t *testing.T) {
	users := newMockUserStore()
	u := users.add("valid_user1")
	h := NewHandler(users, testLogger())
	r := newTestRouter(h)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/delete/"+u.ID.Hex(), nil), "admin-id", true)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, users.users)
	assert.Empty(t, rec.Result().Cookies(), "deleting another account must not touch the caller's session")
}

func TestDeleteUser_SelfClearsCookie(t *testing.T) {
	users := newMockUserStore()
	u := users.add("valid_user1")
	h := NewHandler(users, testLogger())
	r := newTestRouter(h)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/delete/"+u.ID.Hex(), nil), u.ID.Hex(), false)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestDeleteUser_ForbiddenForStrangers(t *testing.T) {
	users := newMockUserStore()
	u := users.add("valid_user1")
	h := NewHandler(users, testLogger())
	r := newTestRouter(h)

	req := asUser(httptest.NewRequest(http.MethodDelete, "/delete/"+u.ID.Hex(), nil), "someone-else", false)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, users.users, 1)
}

func TestGetUsers_Listing(t *testing.T) {
	users := newMockUserStore()
	users.add("user_one")
	users.add("user_two")
	h := NewHandler(users, testLogger())
	r := newTestRouter(h)

	req := asUser(httptest.NewRequest(http.MethodGet, "/getusers", nil), "admin-id", true)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Users      []json.RawMessage `json:"users"`
		TotalUsers int64             `json:"totalUsers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, int64(2), resp.TotalUsers)
	assert.NotContains(t, rec.Body.String(), "fakehash")
}
