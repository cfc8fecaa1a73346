package features_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/aneeb02/footyPredatorr/internal/domain/features"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var defaultVector = model.FeatureVector{23, 180, 74, 90, 95, 42, 75, 77, 90, 70}

func TestBuild(t *testing.T) {
	Convey("Given the feature vector builder", t, func() {
		Convey("When the input is empty", func() {
			v, err := features.Build(model.RawInput{})

			Convey("Then every field takes its default", func() {
				So(err, ShouldBeNil)
				So(v, ShouldResemble, defaultVector)
				So(v, ShouldResemble, features.Defaults())
			})
		})

		Convey("When the input is nil", func() {
			v, err := features.Build(nil)

			Convey("Then it behaves like an empty input", func() {
				So(err, ShouldBeNil)
				So(v, ShouldResemble, defaultVector)
			})
		})

		Convey("When every field is supplied with the default values", func() {
			v, err := features.Build(model.RawInput{
				"age": 23, "height_cm": 180, "weight_kgs": 74,
				"overall_rating": 90, "potential": 95, "sprint_speed": 42,
				"short_passing": 75, "long_passing": 77, "dribbling": 90, "strength": 70,
			})

			Convey("Then the vector matches the all-defaults vector", func() {
				So(err, ShouldBeNil)
				So(v, ShouldResemble, defaultVector)
			})
		})

		Convey("When a complete input is supplied", func() {
			v, err := features.Build(model.RawInput{
				"age": "31", "height": "170", "weight": "68",
				"overall_rating": "88.5", "potential": "89", "sprint_speed": "91",
				"short_passing": "84", "long_passing": "79", "dribbling": "93", "strength": "60",
			})

			Convey("Then the values land in training order", func() {
				So(err, ShouldBeNil)
				So(v, ShouldResemble, model.FeatureVector{31, 170, 68, 88.5, 89, 91, 84, 79, 93, 60})
			})
		})

		Convey("When only one field is missing", func() {
			names := features.Names()
			for i := range names {
				raw := model.RawInput{}
				for j, other := range names {
					if j != i {
						raw[other] = 1
					}
				}
				v, err := features.Build(raw)
				So(err, ShouldBeNil)

				for j := range v {
					if j == i {
						So(v[j], ShouldEqual, defaultVector[j])
					} else {
						So(v[j], ShouldEqual, 1.0)
					}
				}
			}
		})

		Convey("When blank strings and nulls are supplied", func() {
			v, err := features.Build(model.RawInput{"age": "  ", "potential": nil, "dribbling": ""})

			Convey("Then they are treated as absent", func() {
				So(err, ShouldBeNil)
				So(v, ShouldResemble, defaultVector)
			})
		})

		Convey("When an integer field receives a fractional value", func() {
			v, err := features.Build(model.RawInput{"age": 24.9, "height": "181.7", "strength": 70.25})

			Convey("Then integer fields truncate and float fields keep precision", func() {
				So(err, ShouldBeNil)
				So(v[0], ShouldEqual, 24.0)
				So(v[1], ShouldEqual, 181.0)
				So(v[9], ShouldEqual, 70.25)
			})
		})

		Convey("When both a canonical name and its alias are present", func() {
			v, err := features.Build(model.RawInput{"height": 190, "height_cm": 150})

			Convey("Then the canonical name wins", func() {
				So(err, ShouldBeNil)
				So(v[1], ShouldEqual, 190.0)
			})
		})

		Convey("When JSON numbers are decoded with UseNumber", func() {
			var raw model.RawInput
			dec := json.NewDecoder(strings.NewReader(`{"age": 27, "dribbling": 81.5}`))
			dec.UseNumber()
			So(dec.Decode(&raw), ShouldBeNil)

			v, err := features.Build(raw)

			Convey("Then they are coerced like any other number", func() {
				So(err, ShouldBeNil)
				So(v[0], ShouldEqual, 27.0)
				So(v[8], ShouldEqual, 81.5)
			})
		})

		Convey("When form values arrive as string slices", func() {
			v, err := features.Build(model.RawInput{"age": []string{"30", "40"}, "strength": []string{}})

			Convey("Then the first value is used and empty slices are absent", func() {
				So(err, ShouldBeNil)
				So(v[0], ShouldEqual, 30.0)
				So(v[9], ShouldEqual, 70.0)
			})
		})

		Convey("When age is not a number", func() {
			_, err := features.Build(model.RawInput{"age": "not-a-number"})

			Convey("Then it fails with an input error naming the field", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, model.ErrInput), ShouldBeTrue)

				var fe *features.FieldError
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Field, ShouldEqual, "age")
				So(fe.Kind, ShouldEqual, features.Integer)
				So(err.Error(), ShouldContainSubstring, "not-a-number")
			})
		})

		Convey("When a value is not finite or of an unsupported type", func() {
			for _, bad := range []any{"NaN", "inf", true, map[string]any{"x": 1}} {
				_, err := features.Build(model.RawInput{"potential": bad})
				So(errors.Is(err, model.ErrInput), ShouldBeTrue)
			}
		})

		Convey("When a value is any sized Go integer", func() {
			for _, n := range []any{int8(25), int16(25), int32(25), int64(25), uint8(25), uint16(25), uint32(25), uint64(25), uint(25)} {
				v, err := features.Build(model.RawInput{"age": n, "strength": n})

				So(err, ShouldBeNil)
				So(v[0], ShouldEqual, 25.0)
				So(v[9], ShouldEqual, 25.0)
			}
		})
	})
}

func TestFields(t *testing.T) {
	Convey("Given the field table", t, func() {
		fs := features.Fields()

		Convey("Then it has one entry per vector slot in training order", func() {
			So(len(fs), ShouldEqual, model.FeatureCount)
			So(features.Names(), ShouldResemble, []string{
				"age", "height", "weight", "overall_rating", "potential",
				"sprint_speed", "short_passing", "long_passing", "dribbling", "strength",
			})
		})

		Convey("Then mutating the copy does not leak into the builder", func() {
			fs[1].Aliases[0] = "mutated"
			So(features.Fields()[1].Aliases[0], ShouldEqual, "height_cm")
		})
	})
}
