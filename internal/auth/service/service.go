// Package service implements login, token refresh, and the user read
// surface. Tokens are HS256 JWTs; the access token carries the staff name
// and role that downstream scope resolution is built on.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"casedesk_backend/internal/auth/password"
	"casedesk_backend/internal/auth/repository"
	"casedesk_backend/internal/auth/throttle"
	"casedesk_backend/platform/apperr"
	"casedesk_backend/platform/config"
	"casedesk_backend/platform/logger"
)

// ErrTooManyAttempts is returned when the login throttle blocks an
// address. The handler maps it to 429 rather than the usual kind mapping.
var ErrTooManyAttempts = errors.New("too many login attempts")

// User is the staff account as stored.
type User = repository.User

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

type Service struct {
	repo     *repository.Repository
	cfg      config.AuthServiceConfig
	throttle *throttle.LoginThrottle
	log      *logger.Logger
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, th *throttle.LoginThrottle, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, throttle: th, log: log}
}

// Login verifies credentials and returns an access and refresh token pair.
// Failed attempts count against the throttle window; a successful login
// clears it.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (string, string, error) {
	if !s.throttle.Allow(ctx, email) {
		return "", "", ErrTooManyAttempts
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.throttle.RecordFailure(ctx, email)
		s.log.AuthEvent("login", email, false, "unknown account")
		return "", "", apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.throttle.RecordFailure(ctx, email)
		s.log.AuthEvent("login", email, false, "wrong password")
		return "", "", apperr.Unauthorized("invalid credentials")
	}

	s.throttle.Reset(ctx, email)
	s.log.AuthEvent("login", email, true, "")
	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a fresh pair. The user is
// re-read so a role change takes effect at the next refresh.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.parseToken(refreshToken, refreshTokenType, s.cfg.GetJWTRefreshSecret())
	if err != nil {
		return "", "", apperr.Unauthorized("invalid refresh token")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return "", "", apperr.Unauthorized("invalid refresh token")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", apperr.Unauthorized("invalid refresh token")
	}
	return s.issueTokens(user)
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}
	return user, nil
}

// ListUsers returns all staff accounts, used to populate assignee pickers.
func (s *Service) ListUsers(ctx context.Context) ([]repository.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list users", err)
	}
	return users, nil
}

func (s *Service) issueTokens(user repository.User) (string, string, error) {
	access, err := s.signJWT(user, accessTokenType, s.cfg.GetAccessTokenTTL(), s.cfg.GetJWTAccessSecret())
	if err != nil {
		return "", "", err
	}
	refresh, err := s.signJWT(user, refreshTokenType, s.cfg.GetRefreshTokenTTL(), s.cfg.GetJWTRefreshSecret())
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Service) signJWT(user repository.User, tokenType string, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"name": user.StaffName,
		"role": user.Role,
		"type": tokenType,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *Service) parseToken(rawToken, wantType, secret string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token")
	}
	if tokenType, _ := claims["type"].(string); tokenType != wantType {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}
