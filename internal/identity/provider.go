package identity

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"heist-tracker/internal/model"
	"heist-tracker/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

const (
	codenameRetries      = 3
	codenameRetryBackoff = 500 * time.Millisecond
)

// Provider is an email/password identity provider backed by the store's
// users collection. It owns all writes to the injected Context.
type Provider struct {
	store *store.Store
	idc   *Context

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func NewProvider(st *store.Store, idc *Context) *Provider {
	return &Provider{store: st, idc: idc, sleep: time.Sleep}
}

// SignUp registers a new user with a generated codename and signs them in.
func (p *Provider) SignUp(ctx context.Context, email, password string) (Principal, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Principal{}, fmt.Errorf("email and password are required")
	}

	if _, err := p.findByEmail(ctx, email); err == nil {
		return Principal{}, ErrEmailTaken
	} else if !errors.Is(err, ErrInvalidCredentials) {
		return Principal{}, err
	}

	salt, err := newSalt()
	if err != nil {
		return Principal{}, err
	}
	codename := GenerateCodename()

	id, err := p.store.Create(ctx, model.CollectionUsers, map[string]any{
		"email":        email,
		"codename":     codename,
		"salt":         salt,
		"passwordHash": hashPassword(salt, password),
		"createdAt":    store.ServerTimestamp,
	})
	if err != nil {
		return Principal{}, fmt.Errorf("create user: %w", err)
	}

	principal := Principal{ID: id, Codename: codename}
	p.idc.Resolve(&principal)
	return principal, nil
}

// SignIn verifies credentials and resolves the identity context.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Principal, error) {
	email = normalizeEmail(email)

	doc, err := p.findByEmail(ctx, email)
	if err != nil {
		return Principal{}, err
	}

	salt, _ := doc.Fields["salt"].(string)
	want, _ := doc.Fields["passwordHash"].(string)
	if !hmac.Equal([]byte(hashPassword(salt, password)), []byte(want)) {
		return Principal{}, ErrInvalidCredentials
	}

	codename, _ := doc.Fields["codename"].(string)
	principal := Principal{ID: doc.ID, Codename: codename}
	p.idc.Resolve(&principal)
	return principal, nil
}

// SignOut resolves the context to anonymous.
func (p *Provider) SignOut() {
	p.idc.Resolve(nil)
}

// UpdateCodename changes a principal's display codename. The write is retried
// up to 3 times with exponential backoff starting at 500ms.
func (p *Provider) UpdateCodename(ctx context.Context, principal Principal, codename string) error {
	codename = strings.TrimSpace(codename)
	if codename == "" {
		return fmt.Errorf("codename is required")
	}

	var lastErr error
	for attempt := 0; attempt < codenameRetries; attempt++ {
		if attempt > 0 {
			p.sleep(codenameRetryBackoff << (attempt - 1))
		}
		if lastErr = p.writeCodename(ctx, principal.ID, codename); lastErr == nil {
			p.idc.Resolve(&Principal{ID: principal.ID, Codename: codename})
			return nil
		}
	}
	return fmt.Errorf("update codename after %d attempts: %w", codenameRetries, lastErr)
}

func (p *Provider) writeCodename(ctx context.Context, id, codename string) error {
	doc, exists, err := p.store.Get(ctx, model.CollectionUsers, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %s not found", id)
	}
	doc.Fields["codename"] = codename
	return p.store.Set(ctx, model.CollectionUsers, id, doc.Fields)
}

func (p *Provider) findByEmail(ctx context.Context, email string) (store.Document, error) {
	q := store.Query{Collection: model.CollectionUsers, Limit: 1}.
		Where("email", store.OpEqual, email)
	docs, err := p.store.RunQuery(ctx, q)
	if err != nil {
		return store.Document{}, fmt.Errorf("find user: %w", err)
	}
	if len(docs) == 0 {
		return store.Document{}, ErrInvalidCredentials
	}
	return docs[0], nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newSalt() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

func hashPassword(salt, password string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}
