package graph

import "errors"

var (
	// ErrMalformedInput is returned when a route pattern is missing its route,
	// its stop list, or a station ID
	ErrMalformedInput = errors.New("malformed route pattern")

	// ErrStationNotFound is returned when no station matches a requested name
	ErrStationNotFound = errors.New("station not found")
)
