package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"

	"plantsim/internal/config"
)

// AuthService authenticates API consumers. Clients either present the
// shared API key directly or exchange it for a short-lived JWT access
// token.
type AuthService struct {
	apiKeyHash [32]byte
	jwtHandler *JWTHandler
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		apiKeyHash: sha256.Sum256([]byte(cfg.GetAPIKey())),
		jwtHandler: NewJWTHandler(cfg.GetJWTSecret(), cfg.AccessTokenTTL),
	}
}

// VerifyAPIKey checks a presented key against the configured one in
// constant time.
func (a *AuthService) VerifyAPIKey(key string) bool {
	hash := sha256.Sum256([]byte(key))
	return subtle.ConstantTimeCompare(hash[:], a.apiKeyHash[:]) == 1
}

// IssueToken exchanges a valid API key for a signed access token.
func (a *AuthService) IssueToken(apiKey string) (token string, expiresAt time.Time, err error) {
	if !a.VerifyAPIKey(apiKey) {
		return "", time.Time{}, fmt.Errorf("invalid api key")
	}
	return a.jwtHandler.GenerateAccessToken(uuid.New(), "operator")
}

// ValidateToken accepts either a JWT access token or the raw API key.
func (a *AuthService) ValidateToken(token string) error {
	if _, err := a.jwtHandler.ValidateAccessToken(token); err == nil {
		return nil
	}

	if a.VerifyAPIKey(token) {
		return nil
	}

	return fmt.Errorf("invalid or expired token")
}
