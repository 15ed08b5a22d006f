package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gdhanush27/Form-Pulse/internal/config"
)

// Common auth errors.
var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrAdminDisabled   = errors.New("admin surface is disabled, set ADMIN_KEY_HASH to enable")
)

// Claims extends JWT standard claims with respondent identity. The
// optional upstream token is the credential the form platform issued
// to the respondent; the gateway forwards it on protected fetches and
// submissions.
type Claims struct {
	jwt.RegisteredClaims
	Name          string `json:"name"`
	Email         string `json:"email"`
	UpstreamToken string `json:"upstream_token,omitempty"`
}

// AuthService handles respondent JWT issuance and admin key checks.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// GenerateRespondentToken creates a JWT identifying a respondent.
func (s *AuthService) GenerateRespondentToken(name, email, upstreamToken string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Name:          name,
		Email:         email,
		UpstreamToken: upstreamToken,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Email == "" {
		return nil, errors.New("token has no respondent email")
	}

	return claims, nil
}

// CheckAdminKey compares a presented admin key against the configured
// bcrypt hash.
func (s *AuthService) CheckAdminKey(key string) error {
	if s.cfg.AdminKeyHash == "" {
		return ErrAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminKeyHash), []byte(key)); err != nil {
		return ErrInvalidAdminKey
	}
	return nil
}
