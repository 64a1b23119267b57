package http

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const sessionCookie = "sf_session"

type contextKey string

const sessionKeyContextKey contextKey = "session_key"

// SessionMiddleware resolves the storefront session key from the
// sf_session cookie, minting a fresh UUID when the cookie is missing
// or not a valid UUID. The key identifies the session's persisted cart.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			if id, err := uuid.FromString(c.Value); err == nil {
				key = id.String()
			}
		}

		if key == "" {
			id, err := uuid.NewV4()
			if err != nil {
				log.Error().Err(err).Msg("failed to generate session id")
				respondWithError(w, http.StatusInternalServerError, "failed to create session")
				return
			}
			key = id.String()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    key,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionKeyContextKey, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(sessionKeyContextKey).(string); ok {
		return key
	}
	return ""
}
