package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// AuthService coordinates user provisioning and login.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// CreateUser provisions an ERP user able to log in.
func (s *AuthService) CreateUser(ctx context.Context, nick, email, password string, admin bool) (*domain.User, error) {
	nick = strings.TrimSpace(nick)
	if nick == "" || password == "" {
		return nil, apperrors.NewValidationError("nick and password are required", nil)
	}
	if _, err := s.users.GetByNick(ctx, nick); err == nil {
		return nil, apperrors.NewConflict("nick already registered", map[string]any{"nick": nick})
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Nick:         nick,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Admin:        admin,
		Enabled:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and issues an access token.
func (s *AuthService) Login(ctx context.Context, nick, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByNick(ctx, strings.TrimSpace(nick))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !user.Enabled {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("user disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.Nick, user.Admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, nick, currentPassword, newPassword string) error {
	user, err := s.users.GetByNick(ctx, nick)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("user", map[string]any{"nick": nick})
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, nick, hash)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
