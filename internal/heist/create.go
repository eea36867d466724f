package heist

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"heist-tracker/internal/model"
)

const (
	// MaxTitleLength bounds heist titles, in runes.
	MaxTitleLength = 20
	// MaxDescriptionLength bounds heist descriptions, in runes.
	MaxDescriptionLength = 200
	// DeadlineWindow is how long a new heist stays active. The deadline is
	// fixed at creation time and not caller-editable.
	DeadlineWindow = 48 * time.Hour
)

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title must be at most 20 characters")
	ErrDescriptionRequired = errors.New("description is required")
	ErrDescriptionTooLong  = errors.New("description must be at most 200 characters")
	ErrAssigneeRequired    = errors.New("an assignee is required")
	ErrSelfAssignment      = errors.New("a heist cannot be assigned to its creator")
)

// NewHeist is the caller-supplied input for Create. Deadline and creation
// time are not part of it: the deadline is computed here and the creation
// timestamp is assigned by the store's clock.
type NewHeist struct {
	Title              string
	Description        string
	CreatedBy          string
	CreatedByCodename  string
	AssignedTo         string
	AssignedToCodename string
}

func (in NewHeist) validate() error {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return ErrTitleRequired
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return ErrTitleTooLong
	}

	description := strings.TrimSpace(in.Description)
	switch {
	case description == "":
		return ErrDescriptionRequired
	case utf8.RuneCountInString(description) > MaxDescriptionLength:
		return ErrDescriptionTooLong
	}

	switch {
	case in.AssignedTo == "" || in.CreatedBy == "":
		return ErrAssigneeRequired
	case in.AssignedTo == in.CreatedBy:
		return ErrSelfAssignment
	}

	return nil
}

// Create validates the input and persists a new heist with a deadline of
// exactly now + 48 hours. The store assigns the id and fills createdAt with
// its own clock. Store errors propagate to the caller unmodified; there is no
// retry here.
func Create(ctx context.Context, st Store, in NewHeist, now time.Time) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	h := model.Heist{
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		CreatedBy:          in.CreatedBy,
		CreatedByCodename:  in.CreatedByCodename,
		AssignedTo:         in.AssignedTo,
		AssignedToCodename: in.AssignedToCodename,
		Deadline:           now.Add(DeadlineWindow),
	}

	// CreatedAt stays zero here; Fields converts it to the server-timestamp
	// sentinel so the store's clock fills it in.
	return st.Create(ctx, model.CollectionHeists, h.Fields())
}
