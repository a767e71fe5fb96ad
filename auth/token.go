package auth

import (
	"firechat/domain"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "firechat"

// CustomClaims defines the structure of the data stored inside the JWT.
// The principal fields are copied so a request never needs a user lookup.
type CustomClaims struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c CustomClaims) Principal() domain.Principal {
	return domain.Principal{
		ID:          c.UserID,
		DisplayName: c.DisplayName,
		PhotoURL:    c.PhotoURL,
		Email:       c.Email,
	}
}

// TokenIssuer signs and verifies HS256 tokens with a single secret.
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), duration: duration, now: time.Now}
}

// GenerateToken creates a signed JWT for a specific user.
// Every token carries a unique ID so it can be revoked on its own.
func (i *TokenIssuer) GenerateToken(principal domain.Principal, roles []string) (string, error) {
	now := i.now()
	claims := &CustomClaims{
		UserID:      principal.ID,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		PhotoURL:    principal.PhotoURL,
		Roles:       roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func (i *TokenIssuer) ValidateToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		if claims.ID == "" {
			return nil, fmt.Errorf("token without id: %w", jwt.ErrTokenInvalidId)
		}
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// Remaining is how long the token stays valid, zero when already expired.
func (c CustomClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if left := c.ExpiresAt.Sub(now); left > 0 {
		return left
	}
	return 0
}
