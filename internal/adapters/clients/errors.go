package clients

import "errors"

// Sentinel kinds for upstream lookups.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found upstream")
	ErrUpstream        = errors.New("upstream unavailable")
	ErrCircuitOpen     = errors.New("upstream circuit open")
)
