package util

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ariebrainware/aba-tracker/model"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrMissingSecret is returned when a token is issued or parsed before a
// signing secret was configured.
var ErrMissingSecret = errors.New("jwt secret is not configured")

// ErrInvalidToken covers malformed, badly signed and expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

var (
	jwtSecretByte []byte
	jwtMutex      sync.RWMutex
)

// SetJWTSecret sets the secret used to sign and verify tokens. This function
// is thread-safe; tests that change it should not run in parallel.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current JWT secret bytes.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	return append([]byte(nil), jwtSecretByte...)
}

// Claims is the token payload: the user's id, username and role.
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for user valid for ttl.
func IssueToken(user model.User, ttl time.Duration) (string, *Claims, error) {
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return "", nil, ErrMissingSecret
	}
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken verifies signature and expiry and returns the claims.
func ParseToken(tokenString string) (*Claims, error) {
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !model.IsValidRole(claims.Role) || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
