package heist

import (
	"log"
	"sync"
	"time"

	"heist-tracker/internal/identity"
	"heist-tracker/internal/model"
	"heist-tracker/internal/store"
)

// loadErrorMessage is the only error text a ListWatcher ever surfaces. Raw
// store errors are logged, never shown, so backend detail cannot leak into
// the UI layer.
const loadErrorMessage = "Failed to load heists. Please try again."

// ListState is the published view of a ListWatcher.
type ListState struct {
	Heists  []model.Heist
	Loading bool
	Err     string
}

// ListWatcher follows a filtered live view of the heists collection.
//
// It holds at most one open store subscription. Whenever the filter or the
// identity changes the previous subscription is cancelled before a new one is
// opened. While auth is unresolved the watcher stays loading without touching
// the store; once auth resolves with no principal, principal-scoped filters
// publish an empty ready list instead of subscribing.
type ListWatcher struct {
	store Store
	now   func() time.Time
	logf  func(format string, args ...any)

	mu            sync.Mutex
	filter        Filter
	principalID   string
	authLoading   bool
	gen           int
	unsub         store.Unsubscribe
	unsubIdentity func()
	state         ListState
	subs          map[int]func(ListState)
	nextSub       int
	closed        bool
}

// ListOption configures a ListWatcher.
type ListOption func(*ListWatcher)

// WithNow overrides the clock used when building queries.
func WithNow(now func() time.Time) ListOption {
	return func(w *ListWatcher) { w.now = now }
}

// WithLogf overrides where raw subscription errors are logged.
func WithLogf(logf func(format string, args ...any)) ListOption {
	return func(w *ListWatcher) { w.logf = logf }
}

// NewListWatcher starts watching the given filter. The identity context
// drives auth gating; its current state is applied before this returns.
func NewListWatcher(st Store, idc *identity.Context, filter Filter, opts ...ListOption) *ListWatcher {
	w := &ListWatcher{
		store:       st,
		now:         time.Now,
		logf:        log.Printf,
		filter:      filter,
		authLoading: true,
		state:       ListState{Loading: true},
		subs:        make(map[int]func(ListState)),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.unsubIdentity = idc.Subscribe(func(principal *identity.Principal, authLoading bool) {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.authLoading = authLoading
		if principal != nil {
			w.principalID = principal.ID
		} else {
			w.principalID = ""
		}
		w.mu.Unlock()

		w.resubscribe()
	})

	return w
}

// State returns the last published state.
func (w *ListWatcher) State() ListState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Subscribe registers an observer and replays the current state to it
// immediately. The returned cancel func is idempotent.
func (w *ListWatcher) Subscribe(fn func(ListState)) func() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return func() {}
	}
	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn
	state := w.state
	w.mu.Unlock()

	fn(state)

	return func() {
		w.mu.Lock()
		delete(w.subs, id)
		w.mu.Unlock()
	}
}

// SetFilter switches the watcher to a different filter. A change tears down
// the current subscription and opens a new one; setting the same filter is a
// no-op.
func (w *ListWatcher) SetFilter(f Filter) {
	w.mu.Lock()
	if w.closed || w.filter == f {
		w.mu.Unlock()
		return
	}
	w.filter = f
	w.mu.Unlock()

	w.resubscribe()
}

// Refetch unconditionally tears down and reopens the subscription, even when
// no input changed. Recovers from a stuck error state.
func (w *ListWatcher) Refetch() {
	w.resubscribe()
}

// Close cancels the subscription and stops all notifications.
func (w *ListWatcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.gen++
	prev := w.unsub
	w.unsub = nil
	unsubIdentity := w.unsubIdentity
	w.subs = make(map[int]func(ListState))
	w.mu.Unlock()

	if prev != nil {
		prev()
	}
	if unsubIdentity != nil {
		unsubIdentity()
	}
}

// resubscribe applies the current inputs: it supersedes and cancels any open
// subscription, then opens a new one when the inputs call for it.
func (w *ListWatcher) resubscribe() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.gen++
	gen := w.gen
	prev := w.unsub
	w.unsub = nil

	if w.authLoading {
		// Suspended until auth resolves.
		fns, state := w.publishLocked(ListState{Loading: true})
		w.mu.Unlock()
		cancel(prev)
		emit(fns, state)
		return
	}

	if w.principalID == "" && w.filter.RequiresPrincipal() {
		// Anonymous viewers of restricted filters get an empty list, not an
		// error, and no subscription is opened.
		fns, state := w.publishLocked(ListState{Heists: []model.Heist{}})
		w.mu.Unlock()
		cancel(prev)
		emit(fns, state)
		return
	}

	q, err := BuildQuery(w.filter, w.principalID, w.now())
	if err != nil {
		w.logf("heists: %v", err)
		fns, state := w.publishLocked(ListState{Err: loadErrorMessage})
		w.mu.Unlock()
		cancel(prev)
		emit(fns, state)
		return
	}

	fns, state := w.publishLocked(ListState{Loading: true})
	principalID, filter := w.principalID, w.filter
	w.mu.Unlock()
	cancel(prev)
	emit(fns, state)

	unsub := w.store.SubscribeQuery(q,
		func(docs []store.Document) { w.onSnapshot(gen, filter, docs) },
		func(err error) { w.onError(gen, filter, principalID, err) },
	)

	w.mu.Lock()
	if w.closed || w.gen != gen {
		// Superseded while opening; the replacement owns the state now.
		w.mu.Unlock()
		unsub()
		return
	}
	w.unsub = unsub
	w.mu.Unlock()
}

func (w *ListWatcher) onSnapshot(gen int, filter Filter, docs []store.Document) {
	heists := make([]model.Heist, 0, len(docs))
	for _, doc := range docs {
		h, err := model.HeistFromDoc(doc.ID, doc.Fields)
		if err != nil {
			w.logf("heists (%s): dropping malformed record: %v", filter, err)
			continue
		}
		heists = append(heists, h)
	}

	w.mu.Lock()
	if w.closed || w.gen != gen {
		w.mu.Unlock()
		return
	}
	fns, state := w.publishLocked(ListState{Heists: heists})
	w.mu.Unlock()
	emit(fns, state)
}

func (w *ListWatcher) onError(gen int, filter Filter, principalID string, err error) {
	w.mu.Lock()
	if w.closed || w.gen != gen {
		w.mu.Unlock()
		return
	}
	w.logf("heists (%s, principal=%s): subscription error: %v", filter, principalID, err)
	fns, state := w.publishLocked(ListState{Err: loadErrorMessage})
	w.mu.Unlock()
	emit(fns, state)
}

// publishLocked stores the new state and returns the observers to notify.
// Callers emit after releasing the lock.
func (w *ListWatcher) publishLocked(state ListState) ([]func(ListState), ListState) {
	w.state = state
	fns := make([]func(ListState), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	return fns, state
}

func emit(fns []func(ListState), state ListState) {
	for _, fn := range fns {
		fn(state)
	}
}

func cancel(unsub store.Unsubscribe) {
	if unsub != nil {
		unsub()
	}
}
