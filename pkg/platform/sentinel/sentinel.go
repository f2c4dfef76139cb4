package sentinel

import "errors"

// Sentinel dependency errors. Stores and caches return these (optionally wrapped)
// so services can translate them into domain errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrConflict    = errors.New("conflict")
	ErrCacheMiss   = errors.New("cache miss")
)
