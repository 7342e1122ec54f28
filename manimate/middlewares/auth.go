package middlewares

import (
	"context"
	"net/http"

	"manimate/manimate/services/token"
	"manimate/manimate/utils/apperrors"
	httputils "manimate/manimate/utils/http"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// AuthMiddleware rejects requests without a valid bearer token and stores the caller's id.
func AuthMiddleware(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := issuer.ExtractUserID(r.Header.Get("Authorization"))
			if !ok {
				httputils.WriteError(w, r, apperrors.Unauthorized("Unauthorized"))
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the id stored by AuthMiddleware, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}
