// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ticklist/ticklist/internal/auth"
	"github.com/ticklist/ticklist/internal/metrics"
	"github.com/ticklist/ticklist/internal/model"
	"github.com/ticklist/ticklist/internal/repository"
	"github.com/ticklist/ticklist/internal/session"
)

// Service errors.
var (
	// ErrUsernameTaken indicates a sign-up with an already registered username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials indicates a failed sign-in. It never says
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing, expired, or dangling session.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// UserStore is the credential store contract the auth service needs.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// SessionStore is the session store contract. *session.Store satisfies it.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Get(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

// AuthService verifies credentials, issues and destroys sessions, and
// resolves session tokens to callers.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	metrics  metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionStore, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		metrics:  recorder,
	}
}

// SignUp registers a new user and immediately signs them in, so the
// caller leaves with a valid session token in one round trip.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (*model.User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	s.metrics.IncSignUp()
	return user, token, nil
}

// SignIn verifies the credentials and issues a new session token.
// The unknown-username path verifies against a dummy hash so its
// timing matches the wrong-password path.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			auth.VerifyDummy(password)
			s.metrics.IncSignInFailed()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncSignInFailed()
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	s.metrics.IncSignIn()
	return user, token, nil
}

// SignOut destroys the session for the given token.
// Signing out an absent or already-expired token is a no-op success.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Resolve maps a session token to the authenticated caller.
// Returns ErrUnauthenticated for absent/expired tokens and for
// sessions whose user no longer exists; the latter also evicts the
// dangling session entry.
func (s *AuthService) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		s.metrics.IncSessionRejected()
		return nil, ErrUnauthenticated
	}

	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			s.metrics.IncSessionRejected()
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The user was deleted out from under the session; evict
			// the dangling entry so it cannot be presented again.
			_ = s.sessions.Delete(ctx, token)
			s.metrics.IncSessionRejected()
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	s.metrics.IncSessionResolved()
	return &model.Identity{UserID: user.ID, Username: user.Username}, nil
}
