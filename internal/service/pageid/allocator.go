// Package pageid numbers rasterized pages.
//
// Ids are derived from how many entries a directory already holds: a call
// storing n pages into a directory with N entries uses N, N+1, ..., N+n-1.
// With the ListingCounter two uploads running at the same time against the
// same directory can observe the same N and overwrite each other's files.
// That race is accepted; PersistentCounter closes it by reserving ranges in
// a database instead of re-reading the listing.
package pageid

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Allocate returns n contiguous ids starting at existing.
func Allocate(existing, n int) []int {
	if n <= 0 {
		return []int{}
	}
	ids := make([]int, n)
	for i := range ids {
		ids[i] = existing + i
	}
	return ids
}

// Counter reserves the first id of a run of n pages in dir.
type Counter interface {
	Reserve(dir string, n int) (int, error)
}

// ListingCounter counts the entries of dir on every call.
type ListingCounter struct{}

func (ListingCounter) Reserve(dir string, n int) (int, error) {
	return CountEntries(dir)
}

// CountEntries returns the number of entries in dir; a missing dir holds none.
func CountEntries(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("list %s: %w", dir, err)
	}
	return len(entries), nil
}
