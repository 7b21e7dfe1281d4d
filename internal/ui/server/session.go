package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Its-donkey/armada-console/internal/ui/state"
)

const defaultSessionCookie = "armada_session"

type sessionKey struct{}

// session binds every request to a console session and its store. A browser
// without a valid session id gets a fresh one, which starts with an empty store.
func (s *server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(r)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     s.sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   isSecureRequest(r),
			})
			s.logger.Debug(logCategory, "session started", map[string]any{"sessions": s.sessions.Len() + 1})
		}
		store := s.sessions.Open(id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, store)))
	})
}

func (s *server) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(s.sessionCookie)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(strings.TrimSpace(cookie.Value))
	if err != nil {
		return ""
	}
	return id.String()
}

// storeFromRequest returns the session store bound by the session middleware.
func storeFromRequest(r *http.Request) *state.Store {
	if store, ok := r.Context().Value(sessionKey{}).(*state.Store); ok && store != nil {
		return store
	}
	return state.Default()
}
