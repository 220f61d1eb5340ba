package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a small SQLite cache of per-category title lists. Reading every
// existing title from the record store before each run is the pipeline's most
// expensive read; the cache keeps recently fetched lists around so repeated
// runs and stock queries within the TTL hit disk instead of the network.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with a SQLite database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "copydesk.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	titleCacheTable := `
	CREATE TABLE IF NOT EXISTS title_cache (
		category TEXT PRIMARY KEY,
		titles TEXT,
		cached_at DATETIME
	);`

	if _, err := s.db.Exec(titleCacheTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// CacheTitles stores a category's full title list, replacing any prior entry.
func (s *Store) CacheTitles(category string, titles []string) error {
	encoded, err := json.Marshal(titles)
	if err != nil {
		return fmt.Errorf("failed to encode titles: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO title_cache (category, titles, cached_at)
	VALUES (?, ?, ?)`

	_, err = s.db.Exec(query, category, string(encoded), time.Now().UTC())
	return err
}

// GetCachedTitles retrieves a category's title list if it was cached within
// maxAge. A cache miss returns (nil, nil).
func (s *Store) GetCachedTitles(category string, maxAge time.Duration) ([]string, error) {
	query := `
	SELECT titles FROM title_cache
	WHERE category = ? AND cached_at > ?`

	cutoff := time.Now().UTC().Add(-maxAge)
	row := s.db.QueryRow(query, category, cutoff)

	var encoded string
	err := row.Scan(&encoded)
	if err == sql.ErrNoRows {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan titles: %w", err)
	}

	var titles []string
	if err := json.Unmarshal([]byte(encoded), &titles); err != nil {
		return nil, fmt.Errorf("failed to decode titles: %w", err)
	}
	return titles, nil
}

// AppendTitles merges newly accepted titles into an existing cache entry so a
// fresh run sees its own output without refetching. Missing entries are a
// no-op; the next full fetch repopulates them.
func (s *Store) AppendTitles(category string, titles []string) error {
	existing, err := s.GetCachedTitles(category, 24*time.Hour)
	if err != nil || existing == nil {
		return err
	}
	return s.CacheTitles(category, append(existing, titles...))
}

// Invalidate drops the cached list for a category.
func (s *Store) Invalidate(category string) error {
	_, err := s.db.Exec("DELETE FROM title_cache WHERE category = ?", category)
	return err
}

// CacheStats represents cache statistics
type CacheStats struct {
	CategoryCount int
	CacheSize     int64
	LastUpdated   time.Time
}

// GetCacheStats returns statistics about the cache
func (s *Store) GetCacheStats() (*CacheStats, error) {
	stats := &CacheStats{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM title_cache").Scan(&stats.CategoryCount); err != nil {
		return nil, fmt.Errorf("failed to get count: %w", err)
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.CacheSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// ClearCache removes all cached data
func (s *Store) ClearCache() error {
	if _, err := s.db.Exec("DELETE FROM title_cache"); err != nil {
		return fmt.Errorf("failed to clear title_cache table: %w", err)
	}

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}
