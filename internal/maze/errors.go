package maze

import "errors"

var (
	// ErrInvalidDimensions is returned when a maze is requested with fewer than one column or row.
	ErrInvalidDimensions = errors.New("maze dimensions must be at least 1x1")

	// ErrOutOfBounds is returned when a coordinate falls outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrInvalidDirection is returned for a Direction outside North..West.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrUnknownAlgorithm is returned when no generator matches the requested algorithm.
	ErrUnknownAlgorithm = errors.New("unknown generation algorithm")

	// ErrUnreachable is returned when a path cannot be reconstructed, which only
	// happens once the spanning tree has been broken by outside edits.
	ErrUnreachable = errors.New("cell unreachable")

	// ErrBadEncoding is returned when a wall encoding cannot be decoded.
	ErrBadEncoding = errors.New("malformed wall encoding")
)
