// Package auth issues and verifies the signed tokens that authorize API
// mutations. Tokens are HS256 JWTs carrying the user's identity; there is no
// refresh flow, expired tokens just force a new login.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shelfmark/server/models"
)

// ErrUnauthenticated covers missing, malformed, expired, and badly signed
// tokens alike.
var ErrUnauthenticated = errors.New("auth: unauthenticated")

type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies identity tokens with a server-held secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token asserting the user's identity, valid for the
// configured duration.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and checks a token, returning its claims or
// ErrUnauthenticated.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
