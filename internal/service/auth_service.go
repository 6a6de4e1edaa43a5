package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pos-terminal/internal/apiclient"
	"pos-terminal/internal/models"
	"pos-terminal/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthBackend is the part of the backend API the session depends on.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResult, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyResetCode(ctx context.Context, email, resetCode string) (string, string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error)
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// Session is what the terminal knows about the signed-in cashier.
type Session struct {
	User          *models.User `json:"user"`
	Authenticated bool         `json:"authenticated"`
}

// AuthService holds the current session and the persisted token.
type AuthService struct {
	backend AuthBackend
	tokens  TokenStore
	now     func() time.Time
	logger  *zap.Logger

	mu            sync.RWMutex
	user          *models.User
	authenticated bool
}

// NewAuthService creates a new auth service
func NewAuthService(backend AuthBackend, tokens TokenStore) *AuthService {
	return &AuthService{
		backend: backend,
		tokens:  tokens,
		now:     time.Now,
		logger:  util.GetLogger(),
	}
}

// Login validates credentials locally, then exchanges them for a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, validationf("Vui lòng nhập email và mật khẩu")
	}

	result, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: login response carried no token", apiclient.ErrUnavailable)
	}

	if err := s.tokens.SaveToken(ctx, result.Token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	user := result.User
	if user == nil {
		user = userFromClaims(result.Token)
	}

	s.mu.Lock()
	s.user = user
	s.authenticated = true
	s.mu.Unlock()

	s.logger.Info("Cashier logged in", zap.String("email", email))
	return cloneUser(user), nil
}

// Register creates an account. It does not sign the new user in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return "", validationf("Vui lòng nhập đầy đủ họ tên, email và mật khẩu")
	}
	return s.backend.Register(ctx, apiclient.RegisterRequest{Name: name, Email: email, Password: password})
}

// Logout forgets the session locally; the backend keeps no session state.
func (s *AuthService) Logout(ctx context.Context) error {
	s.clearSession()
	if err := s.tokens.DeleteToken(ctx); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	s.logger.Info("Cashier logged out")
	return nil
}

// CheckAuth re-validates the stored token against the backend.
// A backend that cannot be reached leaves the session authenticated.
func (s *AuthService) CheckAuth(ctx context.Context) (Session, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.CheckAuth")
	defer span.End()

	token, err := s.tokens.LoadToken(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		s.clearSession()
		return s.Session(), nil
	}
	if tokenExpired(token, s.now()) {
		s.logger.Info("Stored token expired, discarding")
		s.clearSession()
		_ = s.tokens.DeleteToken(ctx)
		return s.Session(), nil
	}

	user, err := s.backend.VerifyToken(ctx, token)
	switch {
	case err == nil:
		if user == nil {
			user = userFromClaims(token)
		}
		s.mu.Lock()
		s.user = user
		s.authenticated = true
		s.mu.Unlock()
	case errors.Is(err, apiclient.ErrUnavailable):
		s.logger.Warn("Token verification unreachable, keeping session", zap.Error(err))
		s.mu.Lock()
		if s.user == nil {
			s.user = userFromClaims(token)
		}
		s.authenticated = true
		s.mu.Unlock()
	default:
		var apiErr *apiclient.APIError
		if !errors.As(err, &apiErr) {
			return Session{}, err
		}
		s.logger.Info("Backend rejected stored token", zap.String("message", apiErr.Message))
		s.clearSession()
		if delErr := s.tokens.DeleteToken(ctx); delErr != nil {
			return Session{}, fmt.Errorf("failed to delete token: %w", delErr)
		}
	}
	return s.Session(), nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", validationf("Vui lòng nhập email")
	}
	return s.backend.ForgotPassword(ctx, email)
}

// VerifyResetCode returns the reset token for the emailed code.
func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) (string, string, error) {
	email, code = strings.TrimSpace(email), strings.TrimSpace(code)
	if email == "" || code == "" {
		return "", "", validationf("Vui lòng nhập email và mã xác nhận")
	}
	return s.backend.VerifyResetCode(ctx, email, code)
}

func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	if strings.TrimSpace(resetToken) == "" || newPassword == "" {
		return "", validationf("Vui lòng nhập mật khẩu mới")
	}
	return s.backend.ResetPassword(ctx, resetToken, newPassword)
}

func (s *AuthService) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{User: cloneUser(s.user), Authenticated: s.authenticated}
}

func (s *AuthService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Token returns the bearer token for privileged calls.
// A missing or locally expired token is ErrUnauthenticated.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	token, err := s.tokens.LoadToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		return "", ErrUnauthenticated
	}
	if tokenExpired(token, s.now()) {
		s.clearSession()
		return "", ErrUnauthenticated
	}
	return token, nil
}

// OptionalToken is for endpoints that also answer anonymous callers.
func (s *AuthService) OptionalToken(ctx context.Context) string {
	token, err := s.Token(ctx)
	if err != nil {
		return ""
	}
	return token
}

func (s *AuthService) clearSession() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// tokenExpired reads exp without verifying the signature. Opaque tokens never expire locally.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

func userFromClaims(token string) *models.User {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	for _, key := range []string{"id", "_id", "userId"} {
		if v, ok := claims[key].(string); ok && v != "" {
			user := &models.User{ID: v}
			if email, ok := claims["email"].(string); ok {
				user.Email = email
			}
			return user
		}
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return &models.User{ID: sub}
	}
	return nil
}
