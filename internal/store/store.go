package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Document is one record of a collection: an opaque id plus a field map.
// Field values are strings, Timestamps or nil.
type Document struct {
	ID     string
	Fields map[string]any
}

// documentRow is the persisted form of a document.
type documentRow struct {
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:64"`
	Data       []byte
	CreatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// Store is a SQLite-backed document store with live query subscriptions.
// Every committed write re-delivers a full snapshot to each subscription
// watching the affected collection.
type Store struct {
	db    *gorm.DB
	subs  *subscriberSet
	clock func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for server-assigned timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// Open opens a SQLite-backed store and runs migrations.
func Open(dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		dsn = "heist_tracker.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	s := &Store{
		db:    db,
		subs:  newSubscriberSet(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close cancels all subscriptions and closes the underlying database.
func (s *Store) Close() error {
	s.subs.closeAll()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create inserts a new document and returns its store-assigned id.
// ServerTimestamp sentinels in fields are replaced with the store clock.
func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.put(ctx, collection, id, fields, true); err != nil {
		return "", err
	}
	s.subs.notify(collection)
	return id, nil
}

// Set writes a document under a caller-chosen id, replacing any previous
// contents.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := s.put(ctx, collection, id, fields, false); err != nil {
		return err
	}
	s.subs.notify(collection)
	return nil
}

func (s *Store) put(ctx context.Context, collection, id string, fields map[string]any, createOnly bool) error {
	now := s.clock()

	resolved := make(map[string]any, len(fields))
	for name, value := range fields {
		if _, isSentinel := value.(serverTimestamp); isSentinel {
			resolved[name] = TimestampOf(now)
			continue
		}
		resolved[name] = value
	}

	data, err := encodeFields(resolved)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	row := documentRow{Collection: collection, ID: id, Data: data, CreatedAt: now}
	db := s.db.WithContext(ctx)
	if createOnly {
		if err := db.Create(&row).Error; err != nil {
			return fmt.Errorf("create %s/%s: %w", collection, id, err)
		}
		return nil
	}
	if err := db.Save(&row).Error; err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Get reads one document. The second result is false when it does not exist.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	switch {
	case err == nil:
		doc, derr := docFromRow(row)
		if derr != nil {
			return Document{}, false, derr
		}
		return doc, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Document{}, false, nil
	default:
		return Document{}, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
}

// List returns every document of a collection, oldest first. One-shot.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	var rows []documentRow
	if err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := docFromRow(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// RunQuery evaluates a query once against the current collection contents.
func (s *Store) RunQuery(ctx context.Context, q Query) ([]Document, error) {
	docs, err := s.List(ctx, q.Collection)
	if err != nil {
		return nil, err
	}
	return q.apply(docs), nil
}

func docFromRow(row documentRow) (Document, error) {
	fields, err := decodeFields(row.Data)
	if err != nil {
		return Document{}, fmt.Errorf("document %s/%s: %w", row.Collection, row.ID, err)
	}
	return Document{ID: row.ID, Fields: fields}, nil
}

// ensureDirForSQLite creates the parent dir for a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
