package domain

import "errors"

var (
	// ErrInvalidInput is returned for bad coordinates, categories or queries,
	// before any I/O happens
	ErrInvalidInput = errors.New("invalid request parameters")

	// ErrNotFound is returned when no record exists for a given id in any tier
	ErrNotFound = errors.New("venue not found")

	// ErrRateLimited is returned when the provider or the local gateway throttles;
	// the caller may retry after the indicated wait
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrProviderUnavailable is returned on network errors or 5xx from the provider
	ErrProviderUnavailable = errors.New("place provider unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache service is unreachable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
