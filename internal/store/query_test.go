package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(t time.Time) Timestamp { return TimestampOf(t) }

func TestQueryMatches(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := Document{ID: "d1", Fields: map[string]any{
		"assignedTo": "u1",
		"deadline":   ts(now.Add(time.Hour)),
		"status":     nil,
	}}

	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{
			name:  "equal string matches",
			query: Query{}.Where("assignedTo", OpEqual, "u1"),
			want:  true,
		},
		{
			name:  "equal string mismatch",
			query: Query{}.Where("assignedTo", OpEqual, "u2"),
			want:  false,
		},
		{
			name:  "greater timestamp",
			query: Query{}.Where("deadline", OpGreater, ts(now)),
			want:  true,
		},
		{
			name:  "greater timestamp excludes equal",
			query: Query{}.Where("deadline", OpGreater, ts(now.Add(time.Hour))),
			want:  false,
		},
		{
			name:  "less-equal includes equal",
			query: Query{}.Where("deadline", OpLessEqual, ts(now.Add(time.Hour))),
			want:  true,
		},
		{
			name:  "missing field never matches",
			query: Query{}.Where("nope", OpEqual, "x"),
			want:  false,
		},
		{
			name:  "mismatched types never match",
			query: Query{}.Where("assignedTo", OpEqual, ts(now)),
			want:  false,
		},
		{
			name:  "null equals null",
			query: Query{}.Where("status", OpEqual, nil),
			want:  true,
		},
		{
			name: "all filters must hold",
			query: Query{}.
				Where("assignedTo", OpEqual, "u1").
				Where("deadline", OpLessEqual, ts(now)),
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.query.matches(doc))
		})
	}
}

func TestQueryApplyOrdersAndCaps(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	docs := []Document{
		{ID: "b", Fields: map[string]any{"deadline": ts(base.Add(2 * time.Hour))}},
		{ID: "c", Fields: map[string]any{"deadline": ts(base.Add(3 * time.Hour))}},
		{ID: "a", Fields: map[string]any{"deadline": ts(base.Add(1 * time.Hour))}},
	}

	asc := Query{OrderBy: "deadline"}.apply(docs)
	assert.Equal(t, []string{"a", "b", "c"}, docIDs(asc))

	desc := Query{OrderBy: "deadline", Desc: true}.apply(docs)
	assert.Equal(t, []string{"c", "b", "a"}, docIDs(desc))

	capped := Query{OrderBy: "deadline", Limit: 2}.apply(docs)
	assert.Equal(t, []string{"a", "b"}, docIDs(capped))
}

func TestTimestampRoundTrip(t *testing.T) {
	t.Parallel()

	moment := time.Date(2026, 2, 20, 12, 0, 0, 123456789, time.UTC)
	assert.True(t, TimestampOf(moment).Time().Equal(moment))
}

func docIDs(docs []Document) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids
}
