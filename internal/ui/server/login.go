package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/Its-donkey/armada-console/internal/ui/guard"
)

type loginForm struct {
	Code string `validate:"required,max=256"`
}

type loginPageData struct {
	basePageData
}

func (s *server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := loginPageData{basePageData: s.buildBasePageData(r, "Sign in")}
	s.render(w, "login", http.StatusOK, data)
}

// handleLogin trades the sign-in code for an identity, keeps it in the
// session and persists it in the identity cookie.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/login", "", "Invalid login form.")
		return
	}
	form := loginForm{Code: strings.TrimSpace(r.FormValue("code"))}
	if err := s.validate.Struct(form); err != nil {
		redirectWith(w, r, "/login", "", "A sign-in code is required.")
		return
	}

	identity, err := s.clientFor(r).Login(r.Context(), form.Code).Get()
	if err != nil {
		s.logger.Warn(logCategory, "login failed", map[string]any{
			"error": err.Error(),
		})
		redirectWith(w, r, "/login", "", "Sign-in was rejected.")
		return
	}

	cookie, err := guard.IdentityCookie(s.identityCookie, identity, isSecureRequest(r), time.Now().Add(s.sessionTTL))
	if err != nil {
		s.logger.Error(logCategory, "encode identity cookie", err, nil)
		redirectWith(w, r, "/login", "", "Sign-in failed.")
		return
	}
	http.SetCookie(w, cookie)
	storeFromRequest(r).Admin.Set(identity)
	s.logger.Info(logCategory, "login successful", map[string]any{
		"admin_id": identity.ID,
	})
	redirectWith(w, r, "/", "Signed in as "+identity.Name+".", "")
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.identityCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	store := storeFromRequest(r)
	store.Admin.Clear()
	store.Users.Clear()
	store.Events.Clear()
	store.Bank.Clear()
	store.Err.Clear()
	redirectWith(w, r, "/login", "Signed out.", "")
}
