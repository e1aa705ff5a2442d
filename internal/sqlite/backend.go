// Package sqlite implements the SQLite storage backend for the historian
// changelog history store. The backend owns the single authoritative
// relational store; every other component goes through it.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/historian/internal/compress"
	"github.com/mesh-intelligence/historian/pkg/types"
)

// dbFileName is the SQLite database file inside the data directory.
const dbFileName = "historian.db"

// Backend implements durable, versioned persistence of changelog entries
// with an append-only audit trail. Construct with NewBackend, initialize
// with Attach, and release with Detach.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	codec    *compress.Zstd
	log      zerolog.Logger
}

// NewBackend creates a detached backend. Call Attach with a Config before
// use.
func NewBackend(log zerolog.Logger) *Backend {
	return &Backend{log: log}
}

// Attach opens (or creates) the database under config.DataDir, applies the
// schema, and prepares the compression codec.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	config.Normalize()
	if err := config.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return err
	}

	// Transactions begin IMMEDIATE so concurrent writers serialize on the
	// write lock before reading the current max version, and writers queue
	// behind the busy timeout instead of failing fast. Pragmas ride on the
	// DSN so every pooled connection gets them.
	dbPath := filepath.Join(config.DataDir, dbFileName)
	dsn := "file:" + dbPath + "?_txlock=immediate" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating indexes: %w", err)
		}
	}

	codec, err := compress.NewZstd()
	if err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.codec = codec
	b.attached = true

	b.log.Debug().Str("db", dbPath).Msg("store attached")
	return nil
}

// Detach closes the database. After Detach all operations return
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// handle returns the database handle, or ErrStoreDetached.
func (b *Backend) handle() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return b.db, nil
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
