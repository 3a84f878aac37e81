package grid

import "errors"

// Domain construction errors.
var (
	// ErrInvalidDomain indicates malformed extents (lo > hi, zero rank,
	// or a boundary list whose length does not match the extents).
	ErrInvalidDomain = errors.New("grid: invalid domain")

	// ErrRankMismatch indicates a coordinate whose rank does not match the domain.
	ErrRankMismatch = errors.New("grid: coordinate rank does not match domain rank")
)
