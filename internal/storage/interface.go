/*
Package storage implements the durable client store for session history.

This package provides SQLite-based storage for small string values (such as
the recent-search list) and anonymous search history, with graceful
degradation if the database is unavailable: every operation becomes a no-op
or returns an empty result.

The database is stored at ~/.tulz/history.db by default and uses
modernc.org/sqlite (a pure Go, CGo-free implementation).
*/
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// KV is a string-valued key-value store. Writes are last-writer-wins.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores value under key.
	Set(key, value string) error

	// Delete removes key. Missing keys are not an error.
	Delete(key string) error
}

// Storage defines the interface for persistent storage operations.
type Storage interface {
	KV

	// Init initializes the database and runs migrations.
	Init() error

	// RecordSearch records a search query for analytics.
	RecordSearch(search SearchRecord) error

	// SearchStats summarizes searches recorded since a given time.
	SearchStats(since time.Time) (SearchStats, error)

	// Cleanup removes old records based on retention policy.
	Cleanup(retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// DefaultPath returns ~/.tulz/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tulz", "history.db"), nil
}

// NewStorage creates a new SQLite storage instance at path, or at
// DefaultPath when path is empty.
//
// If the directory doesn't exist, it will be created on Init.
// If the database cannot be opened, the storage will be disabled but operations will not fail.
func NewStorage(path string) *SQLiteStorage {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			log.Warn().Err(err).Msg("storage disabled")
			return &SQLiteStorage{enabled: false}
		}
		path = p
	}

	return &SQLiteStorage{
		dbPath:  path,
		enabled: true,
	}
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			log.Warn().Err(initErr).Msg("storage disabled")
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Warn().Err(initErr).Msg("storage disabled")
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.disable(initErr)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.disable(initErr)
			return
		}
	})

	return initErr
}

func (s *SQLiteStorage) disable(err error) {
	s.enabled = false
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	log.Warn().Err(err).Msg("storage disabled")
}

// Enabled reports whether the database is usable.
func (s *SQLiteStorage) Enabled() bool {
	return s.enabled && s.db != nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}
