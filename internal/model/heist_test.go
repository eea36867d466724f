package model_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heist-tracker/internal/model"
	"heist-tracker/internal/store"
)

func TestHeistFromDoc(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	fields := map[string]any{
		"title":              "Museum job",
		"description":        "Night shift, two floors.",
		"createdBy":          "u1",
		"createdByCodename":  "SwiftSilverFox",
		"assignedTo":         "u2",
		"assignedToCodename": "BoldJadeRaven",
		"deadline":           store.TimestampOf(deadline),
		"finalStatus":        nil,
		"createdAt":          store.TimestampOf(createdAt),
	}

	h, err := model.HeistFromDoc("h1", fields)
	require.NoError(t, err)

	want := model.Heist{
		ID:                 "h1",
		Title:              "Museum job",
		Description:        "Night shift, two floors.",
		CreatedBy:          "u1",
		CreatedByCodename:  "SwiftSilverFox",
		AssignedTo:         "u2",
		AssignedToCodename: "BoldJadeRaven",
		Deadline:           deadline,
		FinalStatus:        "",
		CreatedAt:          createdAt,
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("HeistFromDoc mismatch (-want +got):\n%s", diff)
	}
}

func TestHeistFromDocToleratesMissingTimestamps(t *testing.T) {
	t.Parallel()

	// A freshly created record can arrive before the server fills createdAt.
	h, err := model.HeistFromDoc("h1", map[string]any{"title": "Quick job"})
	require.NoError(t, err)

	assert.True(t, h.CreatedAt.IsZero())
	assert.True(t, h.Deadline.IsZero())
	assert.Equal(t, "h1", h.ID)
}

func TestHeistFromDocRejectsUnknownFinalStatus(t *testing.T) {
	t.Parallel()

	_, err := model.HeistFromDoc("h1", map[string]any{"finalStatus": "maybe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finalStatus")
}

func TestHeistFromDocAcceptsTerminalStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"success", "failure"} {
		h, err := model.HeistFromDoc("h1", map[string]any{"finalStatus": status})
		require.NoError(t, err)
		assert.Equal(t, model.FinalStatus(status), h.FinalStatus)
	}
}

func TestHeistFieldsRoundTrip(t *testing.T) {
	t.Parallel()

	original := model.Heist{
		ID:                 "h9",
		Title:              "Harbor run",
		Description:        "In and out.",
		CreatedBy:          "u1",
		CreatedByCodename:  "GhostObsidianViper",
		AssignedTo:         "u3",
		AssignedToCodename: "QuickAmberLynx",
		Deadline:           time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
		FinalStatus:        model.StatusSuccess,
		CreatedAt:          time.Date(2026, 3, 30, 9, 30, 0, 0, time.UTC),
	}

	roundTripped, err := model.HeistFromDoc(original.ID, original.Fields())
	require.NoError(t, err)

	if diff := cmp.Diff(original, roundTripped); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestHeistFieldsDefersUnsetCreatedAt(t *testing.T) {
	t.Parallel()

	h := model.Heist{
		Title:    "Harbor run",
		Deadline: time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
	}

	fields := h.Fields()
	assert.Equal(t, store.ServerTimestamp, fields["createdAt"],
		"a never-persisted record asks the store for its clock")

	h.CreatedAt = time.Date(2026, 3, 30, 9, 30, 0, 0, time.UTC)
	ts, ok := h.Fields()["createdAt"].(store.Timestamp)
	require.True(t, ok)
	assert.True(t, ts.Time().Equal(h.CreatedAt))
}

func TestExpiredPredicate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		want     bool
	}{
		{"future deadline is live", now.Add(time.Minute), false},
		{"past deadline is expired", now.Add(-time.Minute), true},
		{"deadline exactly now is expired", now, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := model.Heist{Deadline: tc.deadline}
			assert.Equal(t, tc.want, h.Expired(now))
		})
	}
}
