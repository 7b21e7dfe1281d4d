// Package guard gates console page transitions on the presence of an admin identity.
package guard

import (
	"errors"
	"net/http"

	"github.com/Its-donkey/armada-console/internal/ui/metrics"
	"github.com/Its-donkey/armada-console/internal/ui/model"
	"github.com/Its-donkey/armada-console/internal/ui/state"
	"github.com/Its-donkey/armada-console/logging"
)

// Route names the guard knows about.
const (
	RouteLogin = "login"
	RouteHome  = "home"
)

const logCategory = "guard"

// Outcome is what the guard decided for one transition.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Decision is the guard's answer for a transition.
type Decision struct {
	Outcome Outcome
	// Hydrated is set when the in-memory identity was restored from the cookie.
	Hydrated bool
}

// Paths maps the redirect targets onto URLs.
type Paths struct {
	Login string
	Home  string
}

// AuthContext is handed to the router; it carries everything the guard reads.
type AuthContext struct {
	CookieName string
	Paths      Paths
	// Store resolves the store of the requesting session. Nil means the process-wide store.
	Store   func(*http.Request) *state.Store
	Logger  *logging.Logger
	Metrics *metrics.Recorder
}

func (a *AuthContext) cookieName() string {
	if a.CookieName == "" {
		return DefaultCookieName
	}
	return a.CookieName
}

func (a *AuthContext) paths() Paths {
	p := a.Paths
	if p.Login == "" {
		p.Login = "/login"
	}
	if p.Home == "" {
		p.Home = "/"
	}
	return p
}

// Check decides a transition to route. When admin is empty and the cookie holds
// an identity, admin is hydrated from it first. The cookie is never written.
func (a *AuthContext) Check(route string, admin *state.Cell[model.Identity], cookies CookieSource) Decision {
	var decision Decision
	current, ok := admin.Get()
	present := ok && !current.IsZero()
	if !present {
		identity, err := ReadIdentity(cookies, a.cookieName())
		switch {
		case err == nil:
			admin.Set(identity)
			present = true
			decision.Hydrated = true
			a.Logger.Info(logCategory, "identity restored from cookie", map[string]any{
				"admin_id": identity.ID,
				"route":    route,
			})
		case !errors.Is(err, ErrNoIdentity):
			a.Logger.Warn(logCategory, "ignoring unreadable identity cookie", map[string]any{
				"route": route,
				"error": err.Error(),
			})
		}
	}

	switch {
	case route == RouteLogin && present:
		decision.Outcome = RedirectHome
	case route == RouteLogin:
		decision.Outcome = Allow
	case present:
		decision.Outcome = Allow
	default:
		decision.Outcome = RedirectLogin
	}
	a.Metrics.ObserveGuard(route, decision.Outcome.String())
	return decision
}

// Guard returns middleware that runs Check on every request for route.
func (a *AuthContext) Guard(route string) func(http.Handler) http.Handler {
	paths := a.paths()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := state.Default()
			if a.Store != nil {
				store = a.Store(r)
			}
			switch a.Check(route, store.Admin, r).Outcome {
			case RedirectLogin:
				http.Redirect(w, r, paths.Login, http.StatusSeeOther)
			case RedirectHome:
				http.Redirect(w, r, paths.Home, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
