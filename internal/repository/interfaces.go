package repository

// PageCounterRepository persists the next free page id per directory.
type PageCounterRepository interface {
	// Reserve returns the first id of a run of n ids for dir and advances the
	// counter past it. A directory without a counter starts at seed.
	Reserve(dir string, seed, n int) (int, error)

	// Get returns the next free id of dir and whether a counter exists.
	Get(dir string) (int, bool, error)

	// Set overwrites the next free id of dir.
	Set(dir string, next int) error
}
