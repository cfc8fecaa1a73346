package model

import "errors"

// Sentinel error kinds shared by the prediction components. Components wrap
// these with %w so callers can classify failures with errors.Is.
var (
	// ErrInput marks a present input field that cannot be coerced to a number.
	ErrInput = errors.New("invalid input")
	// ErrInference marks an artifact that rejected the vector or misbehaved.
	ErrInference = errors.New("inference failed")
	// ErrUnknownLabel marks a classifier label outside the encoder's domain.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrArtifactLoad marks a startup failure loading or validating artifacts.
	ErrArtifactLoad = errors.New("artifact load failed")
	// ErrNotReady marks a request made before the component it needs is up.
	ErrNotReady = errors.New("not ready")
)
