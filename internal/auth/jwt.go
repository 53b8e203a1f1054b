package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("unexpected token type")
)

var (
	jwtSecret  = []byte("change-me")
	accessTTL  = time.Hour
	refreshTTL = 7 * 24 * time.Hour
)

// Configure sets the signing secret and token lifetimes. Called once at startup.
func Configure(secret string, access, refresh time.Duration) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if access > 0 {
		accessTTL = access
	}
	if refresh > 0 {
		refreshTTL = refresh
	}
}

func RefreshTTL() time.Duration {
	return refreshTTL
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateToken issues a short-lived access token.
func GenerateToken(userID, role string) (string, error) {
	token, _, err := sign(userID, role, TokenTypeAccess, accessTTL)
	return token, err
}

// GenerateRefreshToken issues a refresh token and returns its jti and expiry
// so the caller can persist them.
func GenerateRefreshToken(userID, role string) (token, jti string, expiresAt time.Time, err error) {
	token, claims, err := sign(userID, role, TokenTypeRefresh, refreshTTL)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, claims.ID, claims.ExpiresAt.Time, nil
}

func sign(userID, role, tokenType string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken validates signature and expiry of an access token.
func ParseToken(tokenStr string) (*Claims, error) {
	return parse(tokenStr, TokenTypeAccess)
}

func ParseRefreshToken(tokenStr string) (*Claims, error) {
	return parse(tokenStr, TokenTypeRefresh)
}

func parse(tokenStr, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}
