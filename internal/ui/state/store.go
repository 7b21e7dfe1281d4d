package state

import (
	"slices"
	"sync"

	"github.com/Its-donkey/armada-console/internal/ui/model"
)

// Store groups the cells the console shares between the API client, the
// navigation guard and the pages.
type Store struct {
	// Admin is the authenticated identity; unset means unauthenticated.
	Admin  *Cell[model.Identity]
	Users  *Cell[[]model.User]
	Events *Cell[[]model.Event]
	Bank   *Cell[int64]
	// Err holds the last failure recorded by a refresh.
	Err *Cell[error]
}

// NewStore builds an independent store with the event ordering watcher installed.
func NewStore() *Store {
	s := &Store{
		Admin:  NewCell[model.Identity](),
		Users:  NewCell[[]model.User](),
		Events: NewCell[[]model.Event](),
		Bank:   NewCell[int64](),
		Err:    NewCell[error](),
	}
	s.Events.Intercept(sortEventsOnReplace)
	return s
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Default returns the process-wide store, creating it on first use.
func Default() *Store {
	defaultOnce.Do(func() {
		defaultStore = NewStore()
	})
	return defaultStore
}

// Identity returns the in-memory admin identity when one is present.
func (s *Store) Identity() (model.Identity, bool) {
	id, ok := s.Admin.Get()
	if !ok || id.IsZero() {
		return model.Identity{}, false
	}
	return id, true
}

// sortEventsOnReplace stores a sorted copy so the writer's slice keeps its order.
func sortEventsOnReplace(events []model.Event) []model.Event {
	if events == nil {
		return nil
	}
	sorted := slices.Clone(events)
	model.SortEvents(sorted)
	return sorted
}
