package inference

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/aneeb02/footyPredatorr/internal/adapters/artifact"
	"github.com/aneeb02/footyPredatorr/internal/domain/features"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// threeClass scores class 0 on strength, class 1 on passing and class 2 on
// sprint speed.
func threeClass() LinearArtifact {
	row := func(idx ...int) []float64 {
		r := make([]float64, model.FeatureCount)
		for _, i := range idx {
			r[i] = 0.1
		}
		return r
	}
	return LinearArtifact{
		Format:       FormatLinear,
		Version:      1,
		Features:     features.Names(),
		Coefficients: [][]float64{row(9), row(6, 7), row(5)},
		Intercepts:   []float64{0, -7, 0},
	}
}

func writeJSON(t *testing.T, path string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLinear(t *testing.T) {
	Convey("Given a linear classifier", t, func() {
		clf, err := NewLinear(threeClass())
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When classifying a fast player", func() {
			v := features.Defaults()
			v[5] = 99
			label, err1 := clf.Classify(ctx, v)
			dist, err2 := clf.ClassifyWithDistribution(ctx, v)

			Convey("Then the label is the argmax of a valid distribution", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(label, ShouldEqual, model.RawLabel(2))
				So(dist, ShouldHaveLength, 3)
				So(argmax(dist), ShouldEqual, 2)
				So(checkDistribution(dist, 3), ShouldBeNil)
			})
		})

		Convey("When the same vector is classified twice", func() {
			a, _ := clf.ClassifyWithDistribution(ctx, features.Defaults())
			b, _ := clf.ClassifyWithDistribution(ctx, features.Defaults())
			So(b, ShouldResemble, a)
			So(clf.NumClasses(), ShouldEqual, 3)
			So(clf.Close(), ShouldBeNil)
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := clf.Classify(cctx, features.Defaults())
			So(errors.Is(err, model.ErrInference), ShouldBeTrue)
		})
	})

	Convey("Given a linear artifact with a scaler", t, func() {
		a := threeClass()
		a.Mean = make([]float64, model.FeatureCount)
		a.Scale = make([]float64, model.FeatureCount)
		for i := range a.Scale {
			a.Scale[i] = 1
		}
		clf, err := NewLinear(a)
		So(err, ShouldBeNil)

		plain, _ := NewLinear(threeClass())
		d1, _ := clf.ClassifyWithDistribution(context.Background(), features.Defaults())
		d2, _ := plain.ClassifyWithDistribution(context.Background(), features.Defaults())
		So(d1, ShouldResemble, d2)
	})

	Convey("Given malformed linear artifacts", t, func() {
		Convey("Then schema violations are rejected", func() {
			a := threeClass()
			a.Version = 9
			_, err := NewLinear(a)
			So(errors.Is(err, artifact.ErrBadVersion), ShouldBeTrue)

			a = threeClass()
			a.Features = []string{"height", "age"}
			_, err = NewLinear(a)
			So(errors.Is(err, ErrFeatureMismatch), ShouldBeTrue)

			a = threeClass()
			a.Coefficients[1] = []float64{1}
			_, err = NewLinear(a)
			So(errors.Is(err, ErrShape), ShouldBeTrue)

			a = threeClass()
			a.Intercepts = a.Intercepts[:2]
			_, err = NewLinear(a)
			So(errors.Is(err, ErrShape), ShouldBeTrue)

			a = threeClass()
			a.Mean = make([]float64, model.FeatureCount)
			_, err = NewLinear(a)
			So(errors.Is(err, ErrShape), ShouldBeTrue)

			a = threeClass()
			a.Format = "tree"
			_, err = NewLinear(a)
			So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
		})
	})

	Convey("Given coefficients that overflow", t, func() {
		a := threeClass()
		a.Coefficients[0][0] = math.Inf(1)
		a.Coefficients[1][0] = math.Inf(1)
		clf, err := NewLinear(a)
		So(err, ShouldBeNil)

		Convey("Then the broken distribution is an inference error", func() {
			_, err := clf.ClassifyWithDistribution(context.Background(), features.Defaults())
			So(errors.Is(err, model.ErrInference), ShouldBeTrue)
			So(errors.Is(err, ErrBadDistribution), ShouldBeTrue)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given artifacts on disk", t, func() {
		dir := t.TempDir()
		ctx := context.Background()
		path := writeJSON(t, filepath.Join(dir, "model.json"), threeClass())

		Convey("When loading a linear model by extension", func() {
			clf, err := Load(ctx, Config{Format: FormatAuto, ModelPath: path})
			So(err, ShouldBeNil)
			So(clf.NumClasses(), ShouldEqual, 3)
		})

		Convey("When loading a gzipped linear model", func() {
			_, err := artifact.Compress(path, path+".gz", artifact.DefaultLevel)
			So(err, ShouldBeNil)

			clf, err := Load(ctx, Config{ModelPath: path + ".gz"})
			So(err, ShouldBeNil)
			So(clf.NumClasses(), ShouldEqual, 3)
		})

		Convey("When the format cannot be inferred", func() {
			_, err := Load(ctx, Config{ModelPath: filepath.Join(dir, "model.pkl")})
			So(errors.Is(err, model.ErrArtifactLoad), ShouldBeTrue)
			So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
		})

		Convey("When the format is unknown", func() {
			_, err := Load(ctx, Config{Format: "pickle", ModelPath: path})
			So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
		})

		Convey("When the model file is missing", func() {
			_, err := Load(ctx, Config{Format: FormatLinear, ModelPath: filepath.Join(dir, "missing.json")})
			So(errors.Is(err, model.ErrArtifactLoad), ShouldBeTrue)
		})

		Convey("When the ONNX model file is missing", func() {
			_, err := Load(ctx, Config{ModelPath: filepath.Join(dir, "missing.onnx")})

			Convey("Then it fails before touching the runtime", func() {
				So(errors.Is(err, model.ErrArtifactLoad), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}

func TestONNXMetadata(t *testing.T) {
	Convey("Given ONNX metadata sidecars", t, func() {
		dir := t.TempDir()

		Convey("When only the class count is given", func() {
			m, err := LoadONNXMetadata(writeJSON(t, filepath.Join(dir, "m.json"), map[string]any{"num_classes": 4}))

			Convey("Then scikit-learn defaults are applied", func() {
				So(err, ShouldBeNil)
				So(m.InputName, ShouldEqual, "float_input")
				So(m.LabelOutput, ShouldEqual, "output_label")
				So(m.ProbabilityOutput, ShouldEqual, "output_probability")
				So(m.InputShape, ShouldResemble, []int64{1, 10})
			})
		})

		Convey("When the input width is wrong", func() {
			_, err := LoadONNXMetadata(writeJSON(t, filepath.Join(dir, "w.json"),
				map[string]any{"num_classes": 4, "input_shape": []int{1, 9}}))
			So(errors.Is(err, ErrShape), ShouldBeTrue)
		})

		Convey("When the class count is missing", func() {
			_, err := LoadONNXMetadata(writeJSON(t, filepath.Join(dir, "c.json"), map[string]any{}))
			So(errors.Is(err, ErrShape), ShouldBeTrue)
		})
	})
}

func TestCheckDistribution(t *testing.T) {
	Convey("Given candidate distributions", t, func() {
		So(checkDistribution([]float64{0.5, 0.5}, 2), ShouldBeNil)
		So(checkDistribution([]float64{0.5, 0.5004}, 2), ShouldBeNil)
		So(checkDistribution([]float64{0.5, 0.6}, 2), ShouldNotBeNil)
		So(checkDistribution([]float64{1}, 2), ShouldNotBeNil)
		So(checkDistribution([]float64{-0.1, 1.1}, 2), ShouldNotBeNil)
		So(checkDistribution([]float64{math.NaN(), 1}, 2), ShouldNotBeNil)
	})
}
