package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"heist-tracker/internal/heist"
	"heist-tracker/internal/model"
	"heist-tracker/internal/store"
)

// Queryer is the store slice the reminder service reads from.
type Queryer interface {
	RunQuery(ctx context.Context, q store.Query) ([]store.Document, error)
	List(ctx context.Context, collection string) ([]store.Document, error)
}

// ReminderService builds human-readable deadline digests for notifications.
type ReminderService struct {
	store Queryer
}

func NewReminderService(st Queryer) *ReminderService {
	return &ReminderService{store: st}
}

// UserDigest is one user's rendered reminder.
type UserDigest struct {
	User heist.User
	Text string
}

// Digest summarizes the heists assigned to and created by one principal,
// with time-remaining labels. HTML-formatted for notification delivery.
func (s *ReminderService) Digest(ctx context.Context, principalID, codename string, now time.Time) (string, error) {
	active, err := s.listFor(ctx, heist.FilterActive, principalID, now)
	if err != nil {
		return "", err
	}
	assigned, err := s.listFor(ctx, heist.FilterAssigned, principalID, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🕵️ <b>Heist report for %s</b>\n", html.EscapeString(codename)))
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	builder.WriteString("🎯 <b>Assigned to you</b>\n")
	if len(active) == 0 {
		builder.WriteString("- no open assignments\n")
	} else {
		for _, h := range active {
			builder.WriteString(formatHeist(h, now))
		}
	}

	builder.WriteString("\n📋 <b>Created by you</b>\n")
	if len(assigned) == 0 {
		builder.WriteString("- nothing outstanding\n")
	} else {
		for _, h := range assigned {
			builder.WriteString(formatHeist(h, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// DigestAll renders a digest for every registered user.
func (s *ReminderService) DigestAll(ctx context.Context, now time.Time) ([]UserDigest, error) {
	docs, err := s.store.List(ctx, model.CollectionUsers)
	if err != nil {
		return nil, err
	}

	digests := make([]UserDigest, 0, len(docs))
	for _, doc := range docs {
		codename, _ := doc.Fields["codename"].(string)
		text, err := s.Digest(ctx, doc.ID, codename, now)
		if err != nil {
			return nil, fmt.Errorf("digest for %s: %w", doc.ID, err)
		}
		digests = append(digests, UserDigest{
			User: heist.User{ID: doc.ID, Codename: codename},
			Text: text,
		})
	}
	return digests, nil
}

func (s *ReminderService) listFor(ctx context.Context, f heist.Filter, principalID string, now time.Time) ([]model.Heist, error) {
	q, err := heist.BuildQuery(f, principalID, now)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.RunQuery(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s heists: %w", f, err)
	}

	heists := make([]model.Heist, 0, len(docs))
	for _, doc := range docs {
		h, derr := model.HeistFromDoc(doc.ID, doc.Fields)
		if derr != nil {
			log.Printf("reminder: dropping malformed record: %v", derr)
			continue
		}
		heists = append(heists, h)
	}
	return heists, nil
}

func formatHeist(h model.Heist, now time.Time) string {
	icon := "🟢"
	if remaining := h.Deadline.Sub(now); remaining <= 12*time.Hour {
		icon = "⏳"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(h.Title))))
	sb.WriteString(fmt.Sprintf("\n   ⏰ %s", heist.DeadlineLabel(h, now)))
	sb.WriteString(fmt.Sprintf("\n   🤝 %s → %s",
		html.EscapeString(h.CreatedByCodename), html.EscapeString(h.AssignedToCodename)))
	sb.WriteByte('\n')
	return sb.String()
}
