package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/shared"
)

// Principal is middleware that resolves the bearer token and attaches the
// principal to the request context. Requests without a valid token are
// rejected; downstream authorization trusts the attached principal verbatim.
func Principal(tokens *TokenManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			principal, err := tokens.Lookup(r.Context(), token)
			if err != nil {
				if logger != nil && err != shared.ErrInvalidCredentials {
					logger.Error("token lookup", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
				return
			}
			ctx := shared.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
