package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogify/backend/internal/apperr"
	"github.com/blogify/backend/internal/models"
	"github.com/blogify/backend/internal/store"
)

// UserStore is the account persistence the credential manager depends on.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
}

// Service is the credential & session manager: it validates registration
// input, stores hashed credentials, verifies them at sign-in, and mints
// session tokens. It holds no per-request state.
type Service struct {
	users  UserStore
	tokens *TokenManager
	logger *logrus.Logger
}

func NewService(users UserStore, tokens *TokenManager, logger *logrus.Logger) *Service {
	return &Service{users: users, tokens: tokens, logger: logger}
}

// Register validates the signup input and persists a new account with a
// bcrypt-hashed password. No token is issued; registration does not imply
// sign-in.
func (s *Service) Register(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	if username == "" || email == "" || password == "" {
		return nil, apperr.Validation("all fields are required")
	}
	if err := validateSignup(username, email, password); err != nil {
		return nil, err
	}

	// Advisory pre-check only. The unique indexes on username and email are
	// the authoritative guard; a concurrent duplicate surfaces below as
	// ErrDuplicateKey and maps to the same conflict.
	_, err := s.users.FindByEmailOrUsername(ctx, email, username)
	if err == nil {
		return nil, apperr.Conflict("username or email already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.WithError(err).Error("signup: user lookup failed")
		return nil, apperr.Internal()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("signup: password hashing failed")
		return nil, apperr.Internal()
	}

	user, err := s.users.Create(ctx, &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, apperr.Conflict("username or email already exists")
		}
		s.logger.WithError(err).Error("signup: user create failed")
		return nil, apperr.Internal()
	}

	s.logger.WithField("username", user.Username).Info("user registered")
	return user, nil
}

// Authenticate verifies the credentials and mints a session token for the
// account.
func (s *Service) Authenticate(ctx context.Context, req models.SigninRequest) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	if email == "" || password == "" {
		return nil, "", apperr.Validation("all fields are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", apperr.NotFound("user not found")
		}
		s.logger.WithError(err).Error("signin: user lookup failed")
		return nil, "", apperr.Internal()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Mint(user)
	if err != nil {
		s.logger.WithError(err).Error("signin: token mint failed")
		return nil, "", apperr.Internal()
	}

	s.logger.WithField("username", user.Username).Info("user signed in")
	return user, token, nil
}
