package services

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken — любой сбой проверки (подпись, формат, срок)
// отдаётся одной и той же ошибкой, чтобы не раскрывать, что именно не так.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims — полезная нагрузка токена: имя и email плюс
// стандартные exp/iat. Состояния на сервере под токен нет.
type TokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
}

// NewTokenService требует непустой секрет — без него подписывать нечем.
func NewTokenService(secret string) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is not configured")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

func (s *TokenService) Issue(name, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now), // issued at — доп. уникальность
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
