package heist

import (
	"strings"
	"sync"

	"heist-tracker/internal/model"
	"heist-tracker/internal/store"
)

// DocState is the published view of a DocWatcher.
//
// Combinations:
//   - loading:  {Loading: true}
//   - ready:    {Heist: &h}
//   - missing:  {NotFound: true}
//   - failed:   {Err: err}
type DocState struct {
	Heist    *model.Heist
	Loading  bool
	NotFound bool
	Err      error
}

// DocWatcher follows a single heist document. A blank id reports NotFound
// immediately and never opens a subscription.
type DocWatcher struct {
	mu     sync.Mutex
	state  DocState
	unsub  store.Unsubscribe
	subs   map[int]func(DocState)
	next   int
	closed bool
}

// NewDocWatcher starts watching one heist by id.
func NewDocWatcher(st Store, id string) *DocWatcher {
	w := &DocWatcher{subs: make(map[int]func(DocState))}

	if strings.TrimSpace(id) == "" {
		w.state = DocState{NotFound: true}
		return w
	}

	w.state = DocState{Loading: true}
	unsub := st.SubscribeDoc(model.CollectionHeists, id,
		func(doc store.Document, exists bool) { w.onSnapshot(doc, exists) },
		func(err error) { w.onError(err) },
	)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		unsub()
		return w
	}
	w.unsub = unsub
	w.mu.Unlock()
	return w
}

// State returns the last published state.
func (w *DocWatcher) State() DocState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Subscribe registers an observer and replays the current state immediately.
func (w *DocWatcher) Subscribe(fn func(DocState)) func() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return func() {}
	}
	id := w.next
	w.next++
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

// Close cancels the subscription. Idempotent.
func (w *DocWatcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	unsub := w.unsub
	w.unsub = nil
	w.subs = make(map[int]func(DocState))
	w.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (w *DocWatcher) onSnapshot(doc store.Document, exists bool) {
	var state DocState
	if exists {
		h, err := model.HeistFromDoc(doc.ID, doc.Fields)
		if err != nil {
			state = DocState{Err: err}
		} else {
			state = DocState{Heist: &h}
		}
	} else {
		state = DocState{NotFound: true}
	}
	w.publish(state)
}

func (w *DocWatcher) onError(err error) {
	w.publish(DocState{Err: err})
}

func (w *DocWatcher) publish(state DocState) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.state = state
	fns := make([]func(DocState), 0, len(w.subs))
	for _, fn := range w.subs {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
