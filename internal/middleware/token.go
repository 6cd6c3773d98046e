package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"authapi/internal/logger"
	"authapi/internal/services"
	"authapi/internal/utils/helpers"

	"go.uber.org/zap"
)

// VerifyToken пускает дальше только запросы с валидным токеном.
// Отсутствие токена (403) и невалидный токен (401) — разные ответы.
func VerifyToken(tokens *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				logger.WithCtx(r.Context()).Warn("VerifyToken: токен не найден в запросе")
				helpers.Fail(w, http.StatusForbidden, "Token not found.")
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("VerifyToken: неверный или просроченный токен", zap.Error(err))
				helpers.Fail(w, http.StatusUnauthorized, "Failed to authenticate token.")
				return
			}

			ctx := context.WithValue(r.Context(), ContextClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken ищет токен по очереди: поле token в теле, query-параметр,
// заголовок x-access-token, заголовок Authorization. Префикс "Bearer "
// срезается у любого источника.
func extractToken(r *http.Request) string {
	var body struct {
		Token string `json:"token"`
	}
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err == nil {
			// тело возвращаем на место — хендлер его ещё не читал
			r.Body = io.NopCloser(bytes.NewReader(raw))
			_ = json.Unmarshal(raw, &body)
		}
	}

	token := body.Token
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		token = r.Header.Get("x-access-token")
	}
	if token == "" {
		token = r.Header.Get("Authorization")
	}

	return strings.TrimPrefix(token, "Bearer ")
}
