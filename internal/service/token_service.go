package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-videotube/internal/model"
	"go-videotube/pkg/apierror"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type userFinder interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

type refreshTokenStore interface {
	Store(ctx context.Context, userID string, token string) error
	Revoke(ctx context.Context, userID string) error
}

type TokenService struct {
	users         userFinder
	tokens        refreshTokenStore
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type accessClaims struct {
	Type     string `json:"typ"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

func NewTokenService(users userFinder, tokens refreshTokenStore, accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) (*TokenService, error) {
	if strings.TrimSpace(accessSecret) == "" || strings.TrimSpace(refreshSecret) == "" {
		return nil, errors.New("token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	return &TokenService{
		users:         users,
		tokens:        tokens,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueTokens mints a fresh pair for userID and stores the refresh token on
// the user record, replacing any previous one. Every failure, including an
// unknown user, is reported as the same internal error.
func (s *TokenService) IssueTokens(ctx context.Context, userID string) (model.TokenPair, error) {
	pair, err := s.issue(ctx, userID)
	if err != nil {
		return model.TokenPair{}, apierror.Internal(err, "Error generating tokens")
	}
	return pair, nil
}

func (s *TokenService) issue(ctx context.Context, userID string) (model.TokenPair, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.TokenPair{}, err
	}

	now := s.now().UTC()

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Type:     tokenTypeAccess,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}).SignedString(s.accessSecret)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		Type: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}).SignedString(s.refreshSecret)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.tokens.Store(ctx, user.ID, refreshToken); err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess returns the user id carried by a valid access token.
func (s *TokenService) VerifyAccess(token string) (string, error) {
	claims := &accessClaims{}
	if err := s.parse(token, claims, s.accessSecret); err != nil || claims.Type != tokenTypeAccess || claims.Subject == "" {
		return "", apierror.Unauthorized("Unauthorized access")
	}
	return claims.Subject, nil
}

// RotateRefresh exchanges a refresh token for a new pair. The presented
// token must be the one currently stored for its user; a token superseded by
// a later login or refresh is rejected even when its signature is valid.
func (s *TokenService) RotateRefresh(ctx context.Context, presented string) (model.TokenPair, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return model.TokenPair{}, apierror.Unauthorized("Please login first")
	}

	claims := &refreshClaims{}
	if err := s.parse(presented, claims, s.refreshSecret); err != nil || claims.Type != tokenTypeRefresh || claims.Subject == "" {
		return model.TokenPair{}, apierror.Unauthorized("Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			slog.WarnContext(ctx, "refresh token user lookup failed", "error", err)
		}
		return model.TokenPair{}, apierror.Unauthorized("Invalid refresh token")
	}

	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		return model.TokenPair{}, apierror.Unauthorized("Refresh token is expired or used")
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		slog.WarnContext(ctx, "refresh token rotation failed", "user_id", user.ID, "error", err)
		return model.TokenPair{}, apierror.Unauthorized("Invalid refresh token")
	}

	return pair, nil
}

// RevokeRefresh clears the stored refresh token so it can no longer be rotated.
func (s *TokenService) RevokeRefresh(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("token is not valid")
	}
	return nil
}
