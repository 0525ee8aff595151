package sqlite

import (
	"database/sql"
	"fmt"
)

// CounterRepository implements repository.PageCounterRepository for SQLite.
type CounterRepository struct {
	db *DB
}

// NewCounterRepository creates a new SQLite page counter repository.
func NewCounterRepository(db *DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Reserve hands out [next, next+n) for dir inside one transaction.
func (r *CounterRepository) Reserve(dir string, seed, n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("invalid reservation size %d", n)
	}

	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO page_counters (dir, next_id) VALUES (?, ?)
		ON CONFLICT(dir) DO NOTHING
	`, dir, seed); err != nil {
		return 0, fmt.Errorf("failed to seed counter: %w", err)
	}

	var start int
	if err := tx.QueryRow(`SELECT next_id FROM page_counters WHERE dir = ?`, dir).Scan(&start); err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE page_counters SET next_id = next_id + ?, updated_at = CURRENT_TIMESTAMP
		WHERE dir = ?
	`, n, dir); err != nil {
		return 0, fmt.Errorf("failed to advance counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit counter: %w", err)
	}
	return start, nil
}

// Get returns the next free id of dir.
func (r *CounterRepository) Get(dir string) (int, bool, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var next int
	err := r.db.Conn().QueryRow(`SELECT next_id FROM page_counters WHERE dir = ?`, dir).Scan(&next)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get counter: %w", err)
	}
	return next, true, nil
}

// Set overwrites the next free id of dir, creating the counter if needed.
func (r *CounterRepository) Set(dir string, next int) error {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO page_counters (dir, next_id) VALUES (?, ?)
		ON CONFLICT(dir) DO UPDATE SET next_id = excluded.next_id, updated_at = CURRENT_TIMESTAMP
	`, dir, next)
	if err != nil {
		return fmt.Errorf("failed to set counter: %w", err)
	}
	return nil
}
