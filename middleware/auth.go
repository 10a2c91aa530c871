package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"zennote/apperr"
	"zennote/auth"
	"zennote/handlers"
)

// TokenHeader carries the token. "Authorization: Bearer <token>" is accepted too.
const TokenHeader = "auth-token"

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth rejects requests without a valid token and attaches the caller's
// user id to the request context.
func RequireAuth(tokens TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				handlers.WriteError(w, r, log, apperr.Unauthenticated("Access denied: No token provided"))
				return
			}

			userID, err := tokens.Verify(tokenStr)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindUnauthenticated {
					log.DebugContext(r.Context(), "token rejected", "error", err)
				}
				handlers.WriteError(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
