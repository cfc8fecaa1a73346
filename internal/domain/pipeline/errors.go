package pipeline

import (
	"errors"

	"github.com/aneeb02/footyPredatorr/internal/domain/model"
)

// Kind names a class of prediction failure as reported to callers.
type Kind string

// Failure kinds.
const (
	KindInput        Kind = "input_error"
	KindInference    Kind = "inference_error"
	KindUnknownLabel Kind = "unknown_label_error"
	KindArtifactLoad Kind = "artifact_load_error"
)

// Failure is the error returned by Predict.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string { return string(f.Kind) + ": " + f.Message }

func (f *Failure) Unwrap() error { return f.Err }

func newFailure(err error) *Failure {
	return &Failure{Kind: KindOf(err), Message: err.Error(), Err: err}
}

// KindOf classifies err. Errors carrying none of the model sentinels are
// treated as inference failures.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	switch {
	case errors.Is(err, model.ErrInput):
		return KindInput
	case errors.Is(err, model.ErrUnknownLabel):
		return KindUnknownLabel
	case errors.Is(err, model.ErrArtifactLoad):
		return KindArtifactLoad
	default:
		return KindInference
	}
}
