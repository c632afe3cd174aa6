package main

import (
	"context"
	"net/http"
	"strings"

	"pairchat/internal/auth"
)

type contextKey string

const sessionKey contextKey = "session"

// sessionFromContext returns the authenticated session stored by requireAuth.
func sessionFromContext(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(auth.Session)
	return sess, ok
}

// requireAuth validates the Bearer token and stores the resulting session
// in the request context. The websocket endpoint also accepts the token as
// a query parameter because browser websocket clients cannot set headers.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else if t := r.URL.Query().Get("token"); t != "" {
			token = t
		}

		if token == "" {
			respondError(w, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := s.auth.VerifyToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, claims.Session())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
