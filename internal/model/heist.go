package model

import (
	"fmt"
	"time"

	"heist-tracker/internal/store"
)

// Collection names in the document store.
const (
	CollectionHeists = "heists"
	CollectionUsers  = "users"
)

// FinalStatus is the terminal outcome of a heist. The zero value means the
// outcome is still open; only expired heists may carry a non-empty status.
type FinalStatus string

const (
	StatusSuccess FinalStatus = "success"
	StatusFailure FinalStatus = "failure"
)

// Heist is one task assignment. Records are created once and owned by the
// store; expiry is computed from Deadline, never stored.
type Heist struct {
	ID                 string
	Title              string
	Description        string
	CreatedBy          string
	CreatedByCodename  string
	AssignedTo         string
	AssignedToCodename string
	Deadline           time.Time
	FinalStatus        FinalStatus
	CreatedAt          time.Time
}

// Expired reports whether the heist's deadline has passed. This is the single
// expiry predicate; queries and display labels must both go through it rather
// than comparing deadlines themselves.
func (h Heist) Expired(now time.Time) bool {
	return !h.Deadline.After(now)
}

// HeistFromDoc converts a stored document into a Heist. The id comes from the
// document key, not the payload. Timestamp fields the server has not filled
// in yet (createdAt immediately after a create) convert to the zero time.
func HeistFromDoc(id string, fields map[string]any) (Heist, error) {
	h := Heist{
		ID:                 id,
		Title:              stringField(fields, "title"),
		Description:        stringField(fields, "description"),
		CreatedBy:          stringField(fields, "createdBy"),
		CreatedByCodename:  stringField(fields, "createdByCodename"),
		AssignedTo:         stringField(fields, "assignedTo"),
		AssignedToCodename: stringField(fields, "assignedToCodename"),
		Deadline:           timeField(fields, "deadline"),
		CreatedAt:          timeField(fields, "createdAt"),
	}

	switch status := FinalStatus(stringField(fields, "finalStatus")); status {
	case "", StatusSuccess, StatusFailure:
		h.FinalStatus = status
	default:
		return Heist{}, fmt.Errorf("heist %s: invalid finalStatus %q", id, status)
	}

	return h, nil
}

// Fields returns the heist's wire representation. The id is not part of the
// payload (it is the document key). A zero CreatedAt marks a record that has
// never been persisted and converts to the server-timestamp sentinel, so the
// store fills it with its own clock.
func (h Heist) Fields() map[string]any {
	var createdAt any = store.ServerTimestamp
	if !h.CreatedAt.IsZero() {
		createdAt = store.TimestampOf(h.CreatedAt)
	}
	fields := map[string]any{
		"title":              h.Title,
		"description":        h.Description,
		"createdBy":          h.CreatedBy,
		"createdByCodename":  h.CreatedByCodename,
		"assignedTo":         h.AssignedTo,
		"assignedToCodename": h.AssignedToCodename,
		"deadline":           store.TimestampOf(h.Deadline),
		"createdAt":          createdAt,
	}
	if h.FinalStatus == "" {
		fields["finalStatus"] = nil
	} else {
		fields["finalStatus"] = string(h.FinalStatus)
	}
	return fields
}

func stringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

func timeField(fields map[string]any, name string) time.Time {
	ts, ok := fields[name].(store.Timestamp)
	if !ok {
		return time.Time{}
	}
	return ts.Time()
}
