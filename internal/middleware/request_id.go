package middleware

import (
	"net/http"

	"authapi/internal/logger"

	"github.com/google/uuid"
)

// RequestID присваивает запросу идентификатор (или берёт клиентский)
// и кладёт его в контекст для логгера.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}

		w.Header().Set("X-Request-Id", rid)

		ctx := logger.IntoContext(r.Context(), rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
