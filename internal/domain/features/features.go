// Package features turns raw, possibly incomplete input into the fixed-order
// feature vector the classifier was trained on.
package features

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aneeb02/footyPredatorr/internal/domain/model"
)

// Kind is the numeric type a field is coerced to.
type Kind string

// Supported field kinds.
const (
	Integer Kind = "integer"
	Float   Kind = "float"
)

// Field describes one slot of the feature vector.
type Field struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Kind    Kind     `json:"kind"`
	Default float64  `json:"default"`
}

var (
	errNotANumber = errors.New("not a number")
	errNotFinite  = errors.New("not a finite number")
)

// fields is ordered exactly as the trained artifact expects.
var fields = [model.FeatureCount]Field{
	{Name: "age", Kind: Integer, Default: 23},
	{Name: "height", Aliases: []string{"height_cm"}, Kind: Integer, Default: 180},
	{Name: "weight", Aliases: []string{"weight_kgs"}, Kind: Integer, Default: 74},
	{Name: "overall_rating", Kind: Float, Default: 90},
	{Name: "potential", Kind: Float, Default: 95},
	{Name: "sprint_speed", Kind: Float, Default: 42},
	{Name: "short_passing", Kind: Float, Default: 75},
	{Name: "long_passing", Kind: Float, Default: 77},
	{Name: "dribbling", Kind: Float, Default: 90},
	{Name: "strength", Kind: Float, Default: 70},
}

// Fields returns a copy of the field table in vector order.
func Fields() []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		f.Aliases = append([]string(nil), f.Aliases...)
		out[i] = f
	}
	return out
}

// Names returns the canonical field names in vector order.
func Names() []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// Defaults returns the vector produced for an empty input.
func Defaults() model.FeatureVector {
	var v model.FeatureVector
	for i, f := range fields {
		v[i] = f.Default
	}
	return v
}

// FieldError reports a present value that could not be coerced.
type FieldError struct {
	Field string
	Kind  Kind
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: cannot use %v as %s: %v", e.Field, e.Value, e.Kind, e.Err)
}

// Unwrap exposes model.ErrInput so callers can classify with errors.Is.
func (e *FieldError) Unwrap() []error {
	return []error{model.ErrInput, e.Err}
}

// Build normalizes raw into a FeatureVector. Missing, nil and blank values
// take the field default; anything present that is not a finite number
// fails with a *FieldError. Integer fields truncate fractional values.
func Build(raw model.RawInput) (model.FeatureVector, error) {
	var v model.FeatureVector
	for i, f := range fields {
		val, ok := lookup(raw, f)
		if !ok {
			v[i] = f.Default
			continue
		}
		n, present, err := coerce(f.Kind, val)
		if err != nil {
			return model.FeatureVector{}, &FieldError{Field: f.Name, Kind: f.Kind, Value: val, Err: err}
		}
		if !present {
			v[i] = f.Default
			continue
		}
		v[i] = n
	}
	return v, nil
}

// lookup finds the value for f, preferring the canonical name over aliases.
func lookup(raw model.RawInput, f Field) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if v, ok := raw[f.Name]; ok {
		return v, true
	}
	for _, alias := range f.Aliases {
		if v, ok := raw[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

// coerce converts v to kind. present is false for nil and blank strings.
func coerce(kind Kind, v any) (n float64, present bool, err error) {
	switch t := v.(type) {
	case nil:
		return 0, false, nil
	case string:
		return parseString(kind, t)
	case []string:
		// url.Values style: first value wins.
		if len(t) == 0 {
			return 0, false, nil
		}
		return parseString(kind, t[0])
	case float64:
		return fromFloat(kind, t)
	case float32:
		return fromFloat(kind, float64(t))
	case int:
		return float64(t), true, nil
	case int8:
		return float64(t), true, nil
	case int16:
		return float64(t), true, nil
	case int32:
		return float64(t), true, nil
	case int64:
		return float64(t), true, nil
	case uint:
		return float64(t), true, nil
	case uint8:
		return float64(t), true, nil
	case uint16:
		return float64(t), true, nil
	case uint32:
		return float64(t), true, nil
	case uint64:
		return float64(t), true, nil
	case fmt.Stringer:
		// json.Number and friends.
		return parseString(kind, t.String())
	default:
		return 0, true, fmt.Errorf("unsupported type %T", v)
	}
}

func parseString(kind Kind, s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	if kind == Integer {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return float64(i), true, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, errNotANumber
	}
	return fromFloat(kind, f)
}

func fromFloat(kind Kind, f float64) (float64, bool, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, errNotFinite
	}
	if kind == Integer {
		return math.Trunc(f), true, nil
	}
	return f, true, nil
}
