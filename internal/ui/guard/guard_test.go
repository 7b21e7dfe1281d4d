package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Its-donkey/armada-console/internal/ui/model"
	"github.com/Its-donkey/armada-console/internal/ui/state"
	"github.com/Its-donkey/armada-console/logging"
)

func requestWithIdentity(t *testing.T, identity *model.Identity) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	if identity != nil {
		cookie, err := IdentityCookie(DefaultCookieName, *identity, false, time.Time{})
		require.NoError(t, err)
		req.AddCookie(cookie)
	}
	return req
}

func TestCheckDecisionTable(t *testing.T) {
	admin := model.Identity{ID: "7", Name: "Ann", Rank: model.RankAdmiral}
	cases := []struct {
		name      string
		route     string
		inMemory  bool
		persisted bool
		want      Outcome
		hydrated  bool
	}{
		{name: "login with identity", route: RouteLogin, inMemory: true, want: RedirectHome},
		{name: "login without identity", route: RouteLogin, want: Allow},
		{name: "page with identity", route: "events", inMemory: true, want: Allow},
		{name: "page without anything", route: "events", want: RedirectLogin},
		{name: "page hydrates from cookie", route: "ranks", persisted: true, want: Allow, hydrated: true},
		{name: "login hydrates from cookie", route: RouteLogin, persisted: true, want: RedirectHome, hydrated: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &AuthContext{Logger: logging.Discard()}
			cell := state.NewCell[model.Identity]()
			if tc.inMemory {
				cell.Set(admin)
			}
			var persisted *model.Identity
			if tc.persisted {
				persisted = &admin
			}

			decision := auth.Check(tc.route, cell, requestWithIdentity(t, persisted))
			assert.Equal(t, tc.want, decision.Outcome)
			assert.Equal(t, tc.hydrated, decision.Hydrated)
			if tc.hydrated {
				got, ok := cell.Get()
				require.True(t, ok)
				assert.Equal(t, admin, got)
			}
		})
	}
}

func TestCheckIgnoresBrokenCookie(t *testing.T) {
	auth := &AuthContext{}
	cell := state.NewCell[model.Identity]()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "%7Bnot-json"})

	decision := auth.Check(RouteHome, cell, req)
	assert.Equal(t, RedirectLogin, decision.Outcome)
	_, ok := cell.Get()
	assert.False(t, ok)
}

func TestGuardNeverWritesCookie(t *testing.T) {
	store := state.NewStore()
	auth := &AuthContext{Store: func(*http.Request) *state.Store { return store }}
	admin := model.Identity{ID: "7"}

	handler := auth.Guard("events")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(t, &admin))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	id, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, "7", id.ID)
}

func TestGuardRedirects(t *testing.T) {
	store := state.NewStore()
	auth := &AuthContext{
		Paths: Paths{Login: "/login", Home: "/"},
		Store: func(*http.Request) *state.Store { return store },
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run for %s", r.URL.Path)
	})

	rec := httptest.NewRecorder()
	auth.Guard("events")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	store.Admin.Set(model.Identity{ID: "1"})
	rec = httptest.NewRecorder()
	auth.Guard(RouteLogin)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestDecodeIdentityAcceptsPlainJSON(t *testing.T) {
	id, err := DecodeIdentity(`{"id":"5","name":"Bob","rank":2}`)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{ID: "5", Name: "Bob", Rank: model.RankCommander}, id)

	_, err = DecodeIdentity(`{"name":"no id"}`)
	assert.ErrorIs(t, err, ErrNoIdentity)
}
