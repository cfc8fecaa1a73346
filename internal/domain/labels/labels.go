// Package labels maps the classifier's encoded output back to position names.
package labels

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aneeb02/footyPredatorr/internal/domain/model"
)

// Construction errors.
var (
	ErrNoClasses      = errors.New("encoder has no classes")
	ErrBlankClass     = errors.New("blank class name")
	ErrDuplicateClass = errors.New("duplicate class name")
)

// Encoder is an immutable, ordered list of position names. The index of a
// name is the label the classifier emits for it.
type Encoder struct {
	classes []string
}

// New validates classes and returns an Encoder owning a copy of them.
func New(classes []string) (*Encoder, error) {
	if len(classes) == 0 {
		return nil, ErrNoClasses
	}
	seen := make(map[string]struct{}, len(classes))
	out := make([]string, len(classes))
	for i, c := range classes {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("class %d: %w", i, ErrBlankClass)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("class %q: %w", c, ErrDuplicateClass)
		}
		seen[c] = struct{}{}
		out[i] = c
	}
	return &Encoder{classes: out}, nil
}

// Resolve returns the position name for raw.
func (e *Encoder) Resolve(raw model.RawLabel) (string, error) {
	if raw < 0 || raw >= model.RawLabel(len(e.classes)) {
		return "", fmt.Errorf("label %d outside [0, %d): %w", raw, len(e.classes), model.ErrUnknownLabel)
	}
	return e.classes[raw], nil
}

// Classes returns a copy of the class names in label order.
func (e *Encoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Len is the number of classes.
func (e *Encoder) Len() int { return len(e.classes) }
