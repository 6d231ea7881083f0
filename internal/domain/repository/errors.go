package repository

import "errors"

// Failure classes the pipeline distinguishes when processing a symbol.
// Source failures are recoverable, cache failures are not.
var (
	ErrDataSourceUnavailable = errors.New("data source unavailable")
	ErrCacheUnavailable      = errors.New("cache unavailable")
	ErrSerialization         = errors.New("serialization failed")
)
