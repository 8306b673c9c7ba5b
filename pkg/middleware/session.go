package middleware

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// SessionHeader identifies the shopper session. Sessions are opaque tokens
// minted by the browser; there is no authentication behind them.
const SessionHeader = "X-Session-ID"

const maxSessionIDLen = 128

// RequireSession rejects requests without a well-formed session header with
// 401 and stores the session ID in the request context otherwise.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if !validSessionID(id) {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:      "UNAUTHORIZED",
					Message:   "missing or malformed " + SessionHeader + " header",
					RequestID: logger.CorrelationIDFromContext(r.Context()),
				},
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), id)))
	})
}

// SessionIDFromContext returns the session ID stored by RequireSession.
func SessionIDFromContext(ctx context.Context) string {
	return logger.SessionIDFromContext(ctx)
}

// validSessionID accepts 1..128 characters from [A-Za-z0-9_-].
func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
