package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/branchpulse-backend/internal/platform/errs"
	"github.com/yungbote/branchpulse-backend/internal/platform/logger"
)

// ServiceClaims are the JWT claims carried by a service token. Subject names
// the calling service; no per-user identity exists in this system.
type ServiceClaims struct {
	jwt.RegisteredClaims
}

// AuthService validates the HS256 service tokens required on mutating
// routes. Tokens are issued out of band (branchctl or deployment tooling).
type AuthService interface {
	IssueToken(subject string, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (string, error)
}

type authService struct {
	log       *logger.Logger
	secretKey string
}

func NewAuthService(baseLog *logger.Logger, secretKey string) AuthService {
	return &authService{
		log:       baseLog.With("service", "AuthService"),
		secretKey: strings.TrimSpace(secretKey),
	}
}

func (s *authService) IssueToken(subject string, ttl time.Duration) (string, error) {
	if s.secretKey == "" {
		return "", fmt.Errorf("auth secret not configured (AUTH_SECRET)")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("missing token subject: %w", errs.ErrInvalidArgument)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken parses and verifies a service token and returns its subject.
func (s *authService) ValidateToken(tokenString string) (string, error) {
	if s.secretKey == "" {
		return "", fmt.Errorf("auth secret not configured (AUTH_SECRET)")
	}
	if strings.TrimSpace(tokenString) == "" {
		return "", fmt.Errorf("missing token: %w", errs.ErrUnauthorized)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", errs.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*ServiceClaims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid or expired token: %w", errs.ErrUnauthorized)
	}
	return claims.Subject, nil
}
