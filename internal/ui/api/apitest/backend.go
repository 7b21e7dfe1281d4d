// Package apitest runs an in-memory Armada backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

// Route names, usable with FailWith, Hold and Calls.
const (
	RouteGetUser     = "getUser"
	RouteUpdateUser  = "updateUser"
	RouteGetUsers    = "getUsers"
	RouteRandomUsers = "randomUsers"
	RouteBalance     = "bankBalance"
	RouteGetEvents   = "getEvents"
	RouteCreateEvent = "createEvent"
	RouteUpdateEvent = "updateEvent"
	RouteDeleteEvent = "deleteEvent"
	RouteLogin       = "login"
)

// Call is one request the backend received.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Backend is a fake of the Armada REST API.
type Backend struct {
	mu         sync.Mutex
	users      []model.User
	random     []model.User
	events     []model.Event
	balance    int64
	identities map[string]model.Identity
	failures   map[string]int
	gates      map[string]chan struct{}
	calls      map[string][]Call
	nextEvent  int
	// wrapEvents answers the events list inside an {"events": [...]} object.
	wrapEvents bool

	server *httptest.Server
}

// New starts a backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		identities: make(map[string]model.Identity),
		failures:   make(map[string]int),
		gates:      make(map[string]chan struct{}),
		calls:      make(map[string][]Call),
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the backend's base URL.
func (b *Backend) URL() string {
	return b.server.URL
}

// SetUsers replaces the user collection.
func (b *Backend) SetUsers(users ...model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append([]model.User(nil), users...)
}

// SetRandomUsers fixes what the random users endpoint returns.
func (b *Backend) SetRandomUsers(users ...model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.random = append([]model.User(nil), users...)
}

// SetEvents replaces the event collection.
func (b *Backend) SetEvents(events ...model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append([]model.Event(nil), events...)
}

// EnvelopeEvents switches the events list between a bare array and the
// {"events": [...]} object.
func (b *Backend) EnvelopeEvents(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wrapEvents = on
}

// Events returns the events the backend currently holds.
func (b *Backend) Events() []model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Event(nil), b.events...)
}

// SetBalance fixes the bank balance.
func (b *Backend) SetBalance(balance int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balance = balance
}

// AllowLogin makes code exchange for identity.
func (b *Backend) AllowLogin(code string, identity model.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identities[code] = identity
}

// FailWith makes route answer with status until cleared with status 0.
func (b *Backend) FailWith(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
		return
	}
	b.failures[route] = status
}

// Hold blocks responses on route until the returned func is called.
func (b *Backend) Hold(route string) func() {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gates[route] = gate
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.gates, route)
			b.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns the requests received on route.
func (b *Backend) Calls(route string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls[route]...)
}

func (b *Backend) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/users/random", b.wrap(RouteRandomUsers, b.handleRandomUsers)).Methods(http.MethodGet)
	r.HandleFunc("/users/", b.wrap(RouteGetUsers, b.handleGetUsers)).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", b.wrap(RouteGetUser, b.handleGetUser)).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}", b.wrap(RouteUpdateUser, b.handleUpdateUser)).Methods(http.MethodPut)
	r.HandleFunc("/bank/balance", b.wrap(RouteBalance, b.handleBalance)).Methods(http.MethodGet)
	r.HandleFunc("/events/", b.wrap(RouteGetEvents, b.handleGetEvents)).Methods(http.MethodGet)
	r.HandleFunc("/events", b.wrap(RouteCreateEvent, b.handleCreateEvent)).Methods(http.MethodPost)
	r.HandleFunc("/events/{id}", b.wrap(RouteUpdateEvent, b.handleUpdateEvent)).Methods(http.MethodPut)
	r.HandleFunc("/events/{id}", b.wrap(RouteDeleteEvent, b.handleDeleteEvent)).Methods(http.MethodDelete)
	r.HandleFunc("/login", b.wrap(RouteLogin, b.handleLogin)).Methods(http.MethodPost)
	return r
}

func (b *Backend) wrap(route string, next func(http.ResponseWriter, *http.Request, []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		b.mu.Lock()
		b.calls[route] = append(b.calls[route], Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		status := b.failures[route]
		gate := b.gates[route]
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			http.Error(w, fmt.Sprintf("%s unavailable", route), status)
			return
		}
		next(w, r, body)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) handleGetUsers(w http.ResponseWriter, _ *http.Request, _ []byte) {
	b.mu.Lock()
	users := append([]model.User{}, b.users...)
	b.mu.Unlock()
	writeJSON(w, model.UsersResponse{Users: users})
}

func (b *Backend) handleRandomUsers(w http.ResponseWriter, _ *http.Request, _ []byte) {
	b.mu.Lock()
	users := append([]model.User{}, b.random...)
	b.mu.Unlock()
	writeJSON(w, model.UsersResponse{Users: users})
}

func (b *Backend) handleGetUser(w http.ResponseWriter, r *http.Request, _ []byte) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.ID == id {
			writeJSON(w, map[string]any{"user": u})
			return
		}
	}
	http.Error(w, "user not found", http.StatusNotFound)
}

func (b *Backend) handleUpdateUser(w http.ResponseWriter, r *http.Request, body []byte) {
	var req struct {
		User model.User `json:"user"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, u := range b.users {
		if u.ID == id {
			b.users[i] = req.User
			writeJSON(w, map[string]any{"user": req.User})
			return
		}
	}
	http.Error(w, "user not found", http.StatusNotFound)
}

func (b *Backend) handleBalance(w http.ResponseWriter, _ *http.Request, _ []byte) {
	b.mu.Lock()
	balance := b.balance
	b.mu.Unlock()
	writeJSON(w, model.BankBalanceResponse{Balance: balance})
}

func (b *Backend) handleGetEvents(w http.ResponseWriter, _ *http.Request, _ []byte) {
	b.mu.Lock()
	events := append([]model.Event{}, b.events...)
	wrap := b.wrapEvents
	b.mu.Unlock()
	if wrap {
		writeJSON(w, model.EventsResponse{Events: events})
		return
	}
	writeJSON(w, events)
}

func (b *Backend) handleCreateEvent(w http.ResponseWriter, _ *http.Request, body []byte) {
	var ev model.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	if ev.ID == "" {
		b.nextEvent++
		ev.ID = fmt.Sprintf("created-%d", b.nextEvent)
	}
	b.events = append(b.events, ev)
	b.mu.Unlock()
	writeJSON(w, map[string]any{"event": ev})
}

func (b *Backend) handleUpdateEvent(w http.ResponseWriter, r *http.Request, body []byte) {
	var ev model.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.events {
		if existing.ID == id {
			ev.ID = id
			b.events[i] = ev
			writeJSON(w, map[string]any{"event": ev})
			return
		}
	}
	http.Error(w, "event not found", http.StatusNotFound)
}

func (b *Backend) handleDeleteEvent(w http.ResponseWriter, r *http.Request, _ []byte) {
	id := mux.Vars(r)["id"]
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ev := range b.events {
		if ev.ID == id {
			b.events = append(b.events[:i], b.events[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) handleLogin(w http.ResponseWriter, _ *http.Request, body []byte) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	identity, ok := b.identities[req.Code]
	b.mu.Unlock()
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, identity)
}
