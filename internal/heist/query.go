package heist

import (
	"context"
	"fmt"
	"time"

	"heist-tracker/internal/model"
	"heist-tracker/internal/store"
)

// Store is the slice of the document store this package consumes.
type Store interface {
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	List(ctx context.Context, collection string) ([]store.Document, error)
	SubscribeQuery(q store.Query, onSnapshot func([]store.Document), onError func(error)) store.Unsubscribe
	SubscribeDoc(collection, id string, onSnapshot func(doc store.Document, exists bool), onError func(error)) store.Unsubscribe
}

// Filter selects which slice of the heists collection a watcher follows.
type Filter string

const (
	// FilterActive: heists assigned to the principal, deadline still ahead.
	FilterActive Filter = "active"
	// FilterAssigned: heists the principal created, deadline still ahead.
	FilterAssigned Filter = "assigned"
	// FilterExpired: everyone's past-deadline heists.
	FilterExpired Filter = "expired"
)

// RequiresPrincipal reports whether the filter is scoped to a signed-in user.
// The expired feed is public.
func (f Filter) RequiresPrincipal() bool {
	return f != FilterExpired
}

func (f Filter) valid() bool {
	switch f {
	case FilterActive, FilterAssigned, FilterExpired:
		return true
	}
	return false
}

// queryLimit caps every heist listing.
const queryLimit = 50

// BuildQuery constructs the store query for a filter. Expiry is decided by
// comparing deadline against now; there is no stored active flag. An earlier
// revision matched on an isActive boolean instead, which needs a sweep job
// to flip the flag at deadline and is not supported.
func BuildQuery(f Filter, principalID string, now time.Time) (store.Query, error) {
	base := store.Query{
		Collection: model.CollectionHeists,
		OrderBy:    "deadline",
		Limit:      queryLimit,
	}
	ts := store.TimestampOf(now)

	switch f {
	case FilterActive:
		return base.
			Where("assignedTo", store.OpEqual, principalID).
			Where("deadline", store.OpGreater, ts), nil
	case FilterAssigned:
		return base.
			Where("createdBy", store.OpEqual, principalID).
			Where("deadline", store.OpGreater, ts), nil
	case FilterExpired:
		base.Desc = true
		return base.Where("deadline", store.OpLessEqual, ts), nil
	default:
		return store.Query{}, fmt.Errorf("unknown heist filter %q", f)
	}
}
