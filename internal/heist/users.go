package heist

import (
	"context"
	"sort"

	"heist-tracker/internal/model"
)

// User is one assignable teammate, as shown in the assignee picker.
type User struct {
	ID       string
	Codename string
}

// ListUsers returns every registered user, sorted by codename. One-shot, not
// a live view.
func ListUsers(ctx context.Context, st Store) ([]User, error) {
	docs, err := st.List(ctx, model.CollectionUsers)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(docs))
	for _, doc := range docs {
		codename, _ := doc.Fields["codename"].(string)
		users = append(users, User{ID: doc.ID, Codename: codename})
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].Codename != users[j].Codename {
			return users[i].Codename < users[j].Codename
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// AssignmentCandidates drops the acting principal from a user listing. A
// heist may not be assigned to its own creator, so the picker never offers
// the current user.
func AssignmentCandidates(users []User, principalID string) []User {
	candidates := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID == principalID {
			continue
		}
		candidates = append(candidates, u)
	}
	return candidates
}
