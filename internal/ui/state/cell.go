package state

import "sync"

// Cell holds one shared value. Every Set replaces the whole value and is visible
// to every holder of the same *Cell as soon as it returns.
type Cell[T any] struct {
	mu          sync.RWMutex
	value       T
	set         bool
	intercept   func(T) T
	subscribers []subscriber[T]
	nextID      int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewCell constructs an unset cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{}
}

// Get returns the current value and whether the cell has been set.
func (c *Cell[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.set
}

// Value returns the current value, or the zero value when unset.
func (c *Cell[T]) Value() T {
	v, _ := c.Get()
	return v
}

// Set replaces the value and notifies subscribers.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	if c.intercept != nil {
		v = c.intercept(v)
	}
	c.value = v
	c.set = true
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Update applies fn to the current value and stores the result as one replacement.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	v := fn(c.value)
	if c.intercept != nil {
		v = c.intercept(v)
	}
	c.value = v
	c.set = true
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
	return v
}

// UpdateIfSet behaves like Update but leaves an unset cell untouched. The
// bool reports whether fn ran.
func (c *Cell[T]) UpdateIfSet(fn func(T) T) (T, bool) {
	c.mu.Lock()
	if !c.set {
		v := c.value
		c.mu.Unlock()
		return v, false
	}
	v := fn(c.value)
	if c.intercept != nil {
		v = c.intercept(v)
	}
	c.value = v
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
	return v, true
}

// Clear returns the cell to the unset state. Subscribers receive the zero value.
func (c *Cell[T]) Clear() {
	var zero T
	c.mu.Lock()
	c.value = zero
	c.set = false
	subs := c.snapshotSubscribers()
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(zero)
	}
}

// Intercept installs a hook that rewrites every replacement before it is stored.
func (c *Cell[T]) Intercept(fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intercept = fn
}

// Subscribe registers fn to run after every write. The returned func removes it.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.subscribers = append(c.subscribers, subscriber[T]{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subscribers {
			if s.id == id {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				break
			}
		}
	}
}

func (c *Cell[T]) snapshotSubscribers() []subscriber[T] {
	if len(c.subscribers) == 0 {
		return nil
	}
	cp := make([]subscriber[T], len(c.subscribers))
	copy(cp, c.subscribers)
	return cp
}
