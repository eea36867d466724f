package identity

import "sync"

// Principal is an authenticated user: opaque id plus display codename.
type Principal struct {
	ID       string
	Codename string
}

// Context holds the current principal and the auth-loading flag. It is
// constructed explicitly at process start and injected into consumers; there
// is no package-level singleton. The provider owns all mutation, consumers
// only read and subscribe.
//
// Lifecycle: starts unresolved (authLoading true), transitions to resolved
// with either a principal or nil (anonymous) and may flip again on later
// sign-in/sign-out, until Close.
type Context struct {
	mu        sync.Mutex
	principal *Principal
	loading   bool
	closed    bool
	subs      map[int]func(principal *Principal, authLoading bool)
	next      int
}

func NewContext() *Context {
	return &Context{
		loading: true,
		subs:    make(map[int]func(*Principal, bool)),
	}
}

// Snapshot returns the current principal (nil when anonymous or unresolved)
// and whether auth is still resolving.
func (c *Context) Snapshot() (*Principal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.principal, c.loading
}

// Subscribe registers an observer and replays the current state to it
// immediately. The returned cancel func is idempotent.
func (c *Context) Subscribe(fn func(principal *Principal, authLoading bool)) func() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return func() {}
	}
	id := c.next
	c.next++
	c.subs[id] = fn
	principal, loading := c.principal, c.loading
	c.mu.Unlock()

	fn(principal, loading)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Resolve sets the current principal (nil for anonymous), clears the loading
// flag and notifies subscribers.
func (c *Context) Resolve(principal *Principal) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.principal = principal
	c.loading = false
	fns := make([]func(*Principal, bool), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(principal, false)
	}
}

// Close drops all subscribers. No notifications are delivered afterwards.
func (c *Context) Close() {
	c.mu.Lock()
	c.closed = true
	c.subs = make(map[int]func(*Principal, bool))
	c.mu.Unlock()
}
