package heist_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heist-tracker/internal/heist"
	"heist-tracker/internal/store"
)

func validInput() heist.NewHeist {
	return heist.NewHeist{
		Title:              "Museum job",
		Description:        "Night shift, two floors.",
		CreatedBy:          "u1",
		CreatedByCodename:  "SwiftSilverFox",
		AssignedTo:         "u2",
		AssignedToCodename: "BoldJadeRaven",
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*heist.NewHeist)
		wantErr error
	}{
		{
			name:    "empty title",
			mutate:  func(in *heist.NewHeist) { in.Title = "   " },
			wantErr: heist.ErrTitleRequired,
		},
		{
			name:    "title at limit passes",
			mutate:  func(in *heist.NewHeist) { in.Title = strings.Repeat("a", 20) },
			wantErr: nil,
		},
		{
			name:    "title over limit",
			mutate:  func(in *heist.NewHeist) { in.Title = strings.Repeat("a", 21) },
			wantErr: heist.ErrTitleTooLong,
		},
		{
			name:    "empty description",
			mutate:  func(in *heist.NewHeist) { in.Description = "" },
			wantErr: heist.ErrDescriptionRequired,
		},
		{
			name:    "description at limit passes",
			mutate:  func(in *heist.NewHeist) { in.Description = strings.Repeat("d", 200) },
			wantErr: nil,
		},
		{
			name:    "description over limit",
			mutate:  func(in *heist.NewHeist) { in.Description = strings.Repeat("d", 201) },
			wantErr: heist.ErrDescriptionTooLong,
		},
		{
			name:    "missing assignee",
			mutate:  func(in *heist.NewHeist) { in.AssignedTo = "" },
			wantErr: heist.ErrAssigneeRequired,
		},
		{
			name:    "self assignment",
			mutate:  func(in *heist.NewHeist) { in.AssignedTo = in.CreatedBy },
			wantErr: heist.ErrSelfAssignment,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeStore{}
			in := validInput()
			tc.mutate(&in)

			_, err := heist.Create(context.Background(), fake, in, time.Now())
			if tc.wantErr == nil {
				require.NoError(t, err)
				assert.Len(t, fake.createCalls, 1)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, fake.createCalls, "rejected input must not reach the store")
		})
	}
}

func TestCreateComputesDeadlineAndDefersCreatedAt(t *testing.T) {
	t.Parallel()

	fake := &fakeStore{createID: "h42"}
	now := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	id, err := heist.Create(context.Background(), fake, validInput(), now)
	require.NoError(t, err)
	assert.Equal(t, "h42", id)

	require.Len(t, fake.createCalls, 1)
	call := fake.createCalls[0]
	assert.Equal(t, "heists", call.collection)

	deadline, ok := call.fields["deadline"].(store.Timestamp)
	require.True(t, ok)
	assert.True(t, deadline.Time().Equal(time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC)),
		"deadline is exactly now + 48h")

	assert.Equal(t, store.ServerTimestamp, call.fields["createdAt"],
		"creation timestamp comes from the store clock, not the client")
	assert.Nil(t, call.fields["finalStatus"])
	assert.Equal(t, "u1", call.fields["createdBy"])
	assert.Equal(t, "u2", call.fields["assignedTo"])
}

func TestCreatePropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("unavailable")
	fake := &fakeStore{createErr: storeErr}

	_, err := heist.Create(context.Background(), fake, validInput(), time.Now())
	assert.ErrorIs(t, err, storeErr, "store errors pass through unmodified")
}

func TestCreateAgainstRealStore(t *testing.T) {
	t.Parallel()

	serverNow := time.Date(2026, 2, 20, 12, 0, 30, 0, time.UTC)
	st := openTestStore(t, store.WithClock(func() time.Time { return serverNow }))
	clientNow := time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

	id, err := heist.Create(context.Background(), st, validInput(), clientNow)
	require.NoError(t, err)

	doc, exists, err := st.Get(context.Background(), "heists", id)
	require.NoError(t, err)
	require.True(t, exists)

	createdAt := doc.Fields["createdAt"].(store.Timestamp).Time()
	assert.True(t, createdAt.Equal(serverNow), "createdAt is filled by the store clock")
}
