package middleware

import (
	"context"

	"authapi/internal/services"
)

type ctxKey string

const ContextClaims ctxKey = "token_claims"

// ClaimsFromContext достаёт расшифрованный payload токена,
// положенный VerifyToken.
func ClaimsFromContext(ctx context.Context) (*services.TokenClaims, bool) {
	v, ok := ctx.Value(ContextClaims).(*services.TokenClaims)
	return v, ok
}
