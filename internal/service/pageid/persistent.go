package pageid

import (
	"path/filepath"

	"github.com/danielostrow/planVision/internal/repository"
)

// PersistentCounter reserves id ranges in a PageCounterRepository so that
// concurrent uploads never share ids. A directory seen for the first time is
// seeded with its current entry count, which keeps the numbering identical to
// ListingCounter on a single-threaded run.
type PersistentCounter struct {
	repo repository.PageCounterRepository
}

func NewPersistentCounter(repo repository.PageCounterRepository) *PersistentCounter {
	return &PersistentCounter{repo: repo}
}

func (c *PersistentCounter) Reserve(dir string, n int) (int, error) {
	seed, err := CountEntries(dir)
	if err != nil {
		return 0, err
	}
	return c.repo.Reserve(CounterKey(dir), seed, n)
}

// Current returns the persisted next id of dir and whether dir has a counter.
func (c *PersistentCounter) Current(dir string) (int, bool, error) {
	return c.repo.Get(CounterKey(dir))
}

// Seed sets the counter of dir to its current entry count.
func (c *PersistentCounter) Seed(dir string) (int, error) {
	count, err := CountEntries(dir)
	if err != nil {
		return 0, err
	}
	if err := c.repo.Set(CounterKey(dir), count); err != nil {
		return 0, err
	}
	return count, nil
}

// CounterKey is the repository key of dir: its absolute path, so a relative
// dir resolves against the working directory of the calling process.
func CounterKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
