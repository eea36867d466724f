package heist_test

import (
	"context"
	"sync"

	"heist-tracker/internal/store"
)

// fakeStore records subscription lifecycle events and lets tests push
// snapshots and errors by hand.
type fakeStore struct {
	mu sync.Mutex

	events    []string
	queries   []store.Query
	onSnap    func([]store.Document)
	onErr     func(error)
	docOnSnap func(store.Document, bool)
	docOnErr  func(error)

	subscribes      int
	unsubscribes    int
	docSubscribes   int
	docUnsubscribes int

	createID    string
	createErr   error
	createCalls []createCall
	listDocs    []store.Document
	listErr     error
}

type createCall struct {
	collection string
	fields     map[string]any
}

func (f *fakeStore) Create(_ context.Context, collection string, fields map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, createCall{collection: collection, fields: fields})
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.createID != "" {
		return f.createID, nil
	}
	return "fake-id", nil
}

func (f *fakeStore) List(_ context.Context, _ string) ([]store.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listDocs, f.listErr
}

func (f *fakeStore) SubscribeQuery(q store.Query, onSnapshot func([]store.Document), onError func(error)) store.Unsubscribe {
	f.mu.Lock()
	f.subscribes++
	f.events = append(f.events, "subscribe")
	f.queries = append(f.queries, q)
	f.onSnap = onSnapshot
	f.onErr = onError
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.unsubscribes++
		f.events = append(f.events, "unsubscribe")
		f.mu.Unlock()
	}
}

func (f *fakeStore) SubscribeDoc(_, _ string, onSnapshot func(store.Document, bool), onError func(error)) store.Unsubscribe {
	f.mu.Lock()
	f.docSubscribes++
	f.docOnSnap = onSnapshot
	f.docOnErr = onError
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.docUnsubscribes++
		f.mu.Unlock()
	}
}

func (f *fakeStore) push(docs []store.Document) {
	f.mu.Lock()
	onSnap := f.onSnap
	f.mu.Unlock()
	onSnap(docs)
}

func (f *fakeStore) pushError(err error) {
	f.mu.Lock()
	onErr := f.onErr
	f.mu.Unlock()
	onErr(err)
}

func (f *fakeStore) pushDoc(doc store.Document, exists bool) {
	f.mu.Lock()
	onSnap := f.docOnSnap
	f.mu.Unlock()
	onSnap(doc, exists)
}

func (f *fakeStore) counts() (subscribes, unsubscribes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes, f.unsubscribes
}

func (f *fakeStore) eventLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func (f *fakeStore) lastQuery() store.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}
