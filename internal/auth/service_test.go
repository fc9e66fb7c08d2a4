package auth

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogify/backend/internal/apperr"
	"github.com/blogify/backend/internal/models"
	"github.com/blogify/backend/internal/store"
)

// mockUserStore is a map-backed UserStore. Create enforces uniqueness under a
// mutex, mirroring the unique-index guard of the real store.
type mockUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User // email -> user

	createErr    error
	lookupErr    error
	skipPrecheck bool // make FindByEmailOrUsername always miss
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User)}
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, store.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	m.users[user.Email] = user
	return user, nil
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	u, ok := m.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	if m.skipPrecheck {
		return nil, store.ErrNotFound
	}
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(users UserStore) *Service {
	return NewService(users, NewTokenManager("test-secret"), testLogger())
}

func TestRegister_Success(t *testing.T) {
	users := newMockUserStore()
	svc := newTestService(users)

	u, err := svc.Register(context.Background(), models.SignupRequest{
		Username: "  valid_user1  ",
		Email:    "Foo@Bar.com",
		Password: "123456",
	})
	require.NoError(t, err)

	assert.Equal(t, "valid_user1", u.Username)
	assert.Equal(t, "foo@bar.com", u.Email, "email must be stored lowercased and trimmed")
	assert.False(t, u.ID.IsZero())

	assert.NotEqual(t, "123456", u.Password, "password must never be stored in plaintext")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("123456")))
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name        string
		req         models.SignupRequest
		wantMessage string
	}{
		{
			name:        "missing username",
			req:         models.SignupRequest{Email: "a@b.com", Password: "123456"},
			wantMessage: "all fields are required",
		},
		{
			name:        "blank password",
			req:         models.SignupRequest{Username: "valid_user1", Email: "a@b.com", Password: "   "},
			wantMessage: "all fields are required",
		},
		{
			name:        "short username",
			req:         models.SignupRequest{Username: "ab", Email: "a@b.com", Password: "123456"},
			wantMessage: "username must be 3-20 characters, letters, numbers, and underscores only",
		},
		{
			name:        "bad email",
			req:         models.SignupRequest{Username: "valid_user1", Email: "not-an-email", Password: "123456"},
			wantMessage: "invalid email address",
		},
		{
			name:        "short password",
			req:         models.SignupRequest{Username: "valid_user1", Email: "a@b.com", Password: "12345"},
			wantMessage: "password must be at least 6 characters",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMockUserStore())

			_, err := svc.Register(context.Background(), tt.req)
			require.Error(t, err)

			var appErr *apperr.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, tt.wantMessage, appErr.Message)
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	users := newMockUserStore()
	svc := newTestService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.SignupRequest{
		Username: "valid_user1", Email: "a@b.com", Password: "123456",
	})
	require.NoError(t, err)

	// Same email, different username.
	_, err = svc.Register(ctx, models.SignupRequest{
		Username: "other_user", Email: "a@b.com", Password: "123456",
	})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "username or email already exists", appErr.Message)

	// Same username, different email.
	_, err = svc.Register(ctx, models.SignupRequest{
		Username: "valid_user1", Email: "c@d.com", Password: "123456",
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}

func TestRegister_StoreLevelConflict(t *testing.T) {
	// The pre-check misses but the unique index still catches the duplicate;
	// it must map to the same conflict error.
	users := newMockUserStore()
	users.skipPrecheck = true
	svc := newTestService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.SignupRequest{
		Username: "valid_user1", Email: "a@b.com", Password: "123456",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, models.SignupRequest{
		Username: "valid_user1", Email: "a@b.com", Password: "123456",
	})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "username or email already exists", appErr.Message)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	// Two simultaneous signups with the same identity: exactly one succeeds.
	users := newMockUserStore()
	users.skipPrecheck = true
	svc := newTestService(users)

	const workers = 2
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), models.SignupRequest{
				Username: "valid_user1", Email: "a@b.com", Password: "123456",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusConflict, appErr.Status)
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
}

func TestRegister_StoreFailure(t *testing.T) {
	users := newMockUserStore()
	users.lookupErr = assert.AnError
	svc := newTestService(users)

	_, err := svc.Register(context.Background(), models.SignupRequest{
		Username: "valid_user1", Email: "a@b.com", Password: "123456",
	})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "internal server error", appErr.Message, "internals must not leak")
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc := newTestService(newMockUserStore())

	_, _, err := svc.Authenticate(context.Background(), models.SigninRequest{
		Email: "nobody@example.com", Password: "123456",
	})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "user not found", appErr.Message)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	users := newMockUserStore()
	svc := newTestService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.SignupRequest{
		Username: "valid_user1", Email: "a@b.com", Password: "123456",
	})
	require.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, models.SigninRequest{Email: "a@b.com", Password: "654321"})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, "invalid credentials", appErr.Message)
}

func TestAuthenticate_MissingFields(t *testing.T) {
	svc := newTestService(newMockUserStore())

	_, _, err := svc.Authenticate(context.Background(), models.SigninRequest{Email: "a@b.com"})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestAuthenticate_Success(t *testing.T) {
	users := newMockUserStore()
	tokens := NewTokenManager("test-secret")
	svc := NewService(users, tokens, testLogger())
	ctx := context.Background()

	registered, err := svc.Register(ctx, models.SignupRequest{
		Username: "valid_user1", Email: "Foo@Bar.com", Password: "123456",
	})
	require.NoError(t, err)

	// Round-trip: registered with mixed case, signs in lowercased.
	user, token, err := svc.Authenticate(ctx, models.SigninRequest{
		Email: "foo@bar.com", Password: "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), claims.UserID)
	assert.Equal(t, "valid_user1", claims.Username)
}

func TestAuthenticate_MixedCaseInput(t *testing.T) {
	users := newMockUserStore()
	svc := newTestService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.SignupRequest{
		Username: "valid_user1", Email: "foo@bar.com", Password: "123456",
	})
	require.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, models.SigninRequest{
		Email: "FOO@BAR.COM", Password: "123456",
	})
	assert.NoError(t, err)
}
