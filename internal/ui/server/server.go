package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Its-donkey/armada-console/internal/ui/api"
	"github.com/Its-donkey/armada-console/internal/ui/guard"
	"github.com/Its-donkey/armada-console/internal/ui/metrics"
	"github.com/Its-donkey/armada-console/internal/ui/state"
	"github.com/Its-donkey/armada-console/logging"
)

const logCategory = "console"

// Route names used by the navigation guard for console pages.
const (
	routeRanks  = "ranks"
	routeEvents = "events"
	routeError  = "error"
)

// Options configures the console HTTP server.
type Options struct {
	Listen string
	// Client is the backend client; each session gets a copy bound to its own store.
	Client   *api.Client
	Sessions *state.Sessions
	Logger   *logging.Logger
	Metrics  *metrics.Recorder

	IdentityCookie string
	SessionCookie  string
	// SessionTTL is how long the identity cookie written at login stays valid.
	SessionTTL time.Duration
	// Location renders event schedules. Nil means the server's local zone.
	Location  *time.Location
	SiteName  string
	Templates map[string]*template.Template

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type server struct {
	client         *api.Client
	sessions       *state.Sessions
	logger         *logging.Logger
	metrics        *metrics.Recorder
	auth           *guard.AuthContext
	validate       *validator.Validate
	templates      map[string]*template.Template
	identityCookie string
	sessionCookie  string
	sessionTTL     time.Duration
	location       *time.Location
	siteName       string
	currentYear    int
}

type navAction struct {
	Label string
	Href  string
}

type basePageData struct {
	PageTitle   string
	SiteName    string
	CurrentYear int
	Nav         []navAction
	Admin       string
	LoggedIn    bool
	Flash       string
	Error       string
}

// Run starts the console HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}
	opts = applyDefaults(opts)
	httpServer := &http.Server{
		Addr:         opts.Listen,
		Handler:      handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		opts.Logger.Info(logCategory, "console listening", map[string]any{"addr": opts.Listen})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	opts.Logger.Info(logCategory, "console shutting down", nil)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// NewHandler builds the console router without starting a listener.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Client == nil {
		return nil, errors.New("api client is required")
	}
	opts = applyDefaults(opts)
	if opts.Sessions == nil {
		sessions, err := state.NewSessions(256)
		if err != nil {
			return nil, fmt.Errorf("session registry: %w", err)
		}
		opts.Sessions = sessions
	}
	tmpl := opts.Templates
	if tmpl == nil {
		loaded, err := loadTemplates()
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		tmpl = loaded
	}

	s := &server{
		client:         opts.Client,
		sessions:       opts.Sessions,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		templates:      tmpl,
		identityCookie: opts.IdentityCookie,
		sessionCookie:  opts.SessionCookie,
		sessionTTL:     opts.SessionTTL,
		location:       opts.Location,
		siteName:       opts.SiteName,
		currentYear:    time.Now().Year(),
	}
	s.auth = &guard.AuthContext{
		CookieName: opts.IdentityCookie,
		Paths:      guard.Paths{Login: "/login", Home: "/"},
		Store:      storeFromRequest,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
	}
	return s.routes(), nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.NewHTTPLogger(s.logger).Middleware)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.session)

		r.With(s.auth.Guard(guard.RouteLogin)).Get("/login", s.handleLoginPage)
		r.With(s.auth.Guard(guard.RouteLogin)).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.With(s.auth.Guard(guard.RouteHome)).Get("/", s.handleHome)
		r.Route("/ranks", func(r chi.Router) {
			r.Use(s.auth.Guard(routeRanks))
			r.Get("/", s.handleRanks)
			r.Post("/draw", s.handleDraw)
			r.Post("/{id}", s.handleUpdateRank)
		})
		r.Route("/events", func(r chi.Router) {
			r.Use(s.auth.Guard(routeEvents))
			r.Get("/", s.handleEvents)
			r.Post("/", s.handleCreateEvent)
			r.Post("/{id}/delete", s.handleDeleteEvent)
		})
		r.With(s.auth.Guard(routeError)).Get("/error", s.handleError)
	})
	return r
}

func (s *server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error(logCategory, "handler panicked", fmt.Errorf("%v", rec), map[string]any{
					"path": r.URL.Path,
				})
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// clientFor returns a client writing into the requesting session's store.
func (s *server) clientFor(r *http.Request) *api.Client {
	return s.client.WithStore(storeFromRequest(r))
}

func (s *server) buildBasePageData(r *http.Request, title string) basePageData {
	base := basePageData{
		PageTitle:   fmt.Sprintf("%s · %s", title, s.siteName),
		SiteName:    s.siteName,
		CurrentYear: s.currentYear,
		Flash:       queryValue(r, "msg"),
		Error:       queryValue(r, "err"),
	}
	if admin, ok := storeFromRequest(r).Identity(); ok {
		base.Admin = admin.Name
		base.LoggedIn = true
		base.Nav = []navAction{
			{Label: "Home", Href: "/"},
			{Label: "Ranks", Href: "/ranks"},
			{Label: "Events", Href: "/events"},
		}
	}
	return base
}

func (s *server) render(w http.ResponseWriter, name string, status int, data any) {
	tmpl, ok := s.templates[name]
	if !ok {
		http.Error(w, name+" template missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error(logCategory, "template error", err, map[string]any{"template": name})
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
