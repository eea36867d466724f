package store

import (
	"context"
	"sync"
)

// Unsubscribe cancels a live subscription. Safe to call more than once; no
// callbacks run after the first call returns. Must not be called from inside
// the subscription's own callback.
type Unsubscribe func()

// subscription serializes deliveries for one subscriber. Each delivery loads
// a fresh snapshot, so a late delivery can never push stale results over
// newer ones.
type subscription struct {
	mu      sync.Mutex
	closed  bool
	deliver func()
}

func (sub *subscription) fire() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.deliver()
}

func (sub *subscription) close() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.closed = true
}

type subEntry struct {
	collection string
	sub        *subscription
}

type subscriberSet struct {
	mu   sync.Mutex
	subs map[int64]subEntry
	next int64
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{subs: make(map[int64]subEntry)}
}

func (set *subscriberSet) add(collection string, sub *subscription) Unsubscribe {
	set.mu.Lock()
	id := set.next
	set.next++
	set.subs[id] = subEntry{collection: collection, sub: sub}
	set.mu.Unlock()

	return func() {
		set.mu.Lock()
		entry, ok := set.subs[id]
		delete(set.subs, id)
		set.mu.Unlock()
		if ok {
			entry.sub.close()
		}
	}
}

// notify re-delivers snapshots to every subscription on the collection.
func (set *subscriberSet) notify(collection string) {
	set.mu.Lock()
	pending := make([]*subscription, 0, len(set.subs))
	for _, entry := range set.subs {
		if entry.collection == collection {
			pending = append(pending, entry.sub)
		}
	}
	set.mu.Unlock()

	for _, sub := range pending {
		sub.fire()
	}
}

func (set *subscriberSet) closeAll() {
	set.mu.Lock()
	entries := make([]subEntry, 0, len(set.subs))
	for _, entry := range set.subs {
		entries = append(entries, entry)
	}
	set.subs = make(map[int64]subEntry)
	set.mu.Unlock()

	for _, entry := range entries {
		entry.sub.close()
	}
}

// SubscribeQuery opens a live subscription on a query. The current result set
// is delivered synchronously before SubscribeQuery returns, then again after
// every write to the collection. Every delivery is a complete replacement
// snapshot.
func (s *Store) SubscribeQuery(q Query, onSnapshot func([]Document), onError func(error)) Unsubscribe {
	sub := &subscription{}
	sub.deliver = func() {
		docs, err := s.RunQuery(context.Background(), q)
		if err != nil {
			onError(err)
			return
		}
		onSnapshot(docs)
	}

	unsub := s.subs.add(q.Collection, sub)
	sub.fire()
	return unsub
}

// SubscribeDoc opens a live subscription on a single document. The snapshot
// callback receives false for exists when the document is absent.
func (s *Store) SubscribeDoc(collection, id string, onSnapshot func(doc Document, exists bool), onError func(error)) Unsubscribe {
	sub := &subscription{}
	sub.deliver = func() {
		doc, exists, err := s.Get(context.Background(), collection, id)
		if err != nil {
			onError(err)
			return
		}
		onSnapshot(doc, exists)
	}

	unsub := s.subs.add(collection, sub)
	sub.fire()
	return unsub
}
