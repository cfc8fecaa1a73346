package inference

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/aneeb02/footyPredatorr/internal/adapters/artifact"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
)

// ONNXMetadata describes the graph's tensors. It is read from a JSON sidecar
// next to the model.
type ONNXMetadata struct {
	InputName         string  `json:"input_name"`
	LabelOutput       string  `json:"label_output"`
	ProbabilityOutput string  `json:"probability_output"`
	InputShape        []int64 `json:"input_shape"`
	NumClasses        int     `json:"num_classes"`
}

// Defaults match a scikit-learn classifier exported without a ZipMap.
func (m *ONNXMetadata) applyDefaults() {
	if m.InputName == "" {
		m.InputName = "float_input"
	}
	if m.LabelOutput == "" {
		m.LabelOutput = "output_label"
	}
	if m.ProbabilityOutput == "" {
		m.ProbabilityOutput = "output_probability"
	}
	if len(m.InputShape) == 0 {
		m.InputShape = []int64{1, model.FeatureCount}
	}
}

func (m *ONNXMetadata) validate() error {
	if len(m.InputShape) != 2 || m.InputShape[0] != 1 || m.InputShape[1] != model.FeatureCount {
		return fmt.Errorf("%w: input %v, want [1 %d]", ErrShape, m.InputShape, model.FeatureCount)
	}
	if m.NumClasses <= 0 {
		return fmt.Errorf("%w: num_classes %d", ErrShape, m.NumClasses)
	}
	return nil
}

// LoadONNXMetadata reads the sidecar at path and applies defaults.
func LoadONNXMetadata(path string) (ONNXMetadata, error) {
	var m ONNXMetadata
	if err := artifact.DecodeJSON(path, &m); err != nil {
		return ONNXMetadata{}, fmt.Errorf("onnx metadata: %w", err)
	}
	m.applyDefaults()
	if err := m.validate(); err != nil {
		return ONNXMetadata{}, err
	}
	return m, nil
}

// onnxSession binds one runtime session to its own tensors, so it must only
// be used by one goroutine at a time.
type onnxSession struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	label   *ort.Tensor[int64]
	probs   *ort.Tensor[float32]
}

func (s *onnxSession) destroy() {
	if s.session != nil {
		_ = s.session.Destroy()
	}
	if s.input != nil {
		_ = s.input.Destroy()
	}
	if s.label != nil {
		_ = s.label.Destroy()
	}
	if s.probs != nil {
		_ = s.probs.Destroy()
	}
}

// ONNX runs an exported graph through a pool of sessions.
type ONNX struct {
	meta ONNXMetadata
	pool *sessionPool[*onnxSession]
}

var envMu sync.Mutex

func initEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// LoadONNX builds cfg.Sessions sessions over cfg.ModelPath. ONNX files must
// not be compressed; the runtime reads them directly.
func LoadONNX(cfg Config) (*ONNX, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("onnx model: %w", err)
	}
	metaPath := cfg.MetadataPath
	if metaPath == "" {
		metaPath = strings.TrimSuffix(cfg.ModelPath, ".onnx") + ".json"
	}
	meta, err := LoadONNXMetadata(metaPath)
	if err != nil {
		return nil, err
	}
	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, err
	}

	n := max(cfg.Sessions, 1)
	sessions := make([]*onnxSession, 0, n)
	for range n {
		s, err := newONNXSession(cfg.ModelPath, meta)
		if err != nil {
			for _, built := range sessions {
				built.destroy()
			}
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return &ONNX{meta: meta, pool: newSessionPool(sessions)}, nil
}

func newONNXSession(path string, meta ONNXMetadata) (*onnxSession, error) {
	s := &onnxSession{}
	var err error
	if s.input, err = ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...)); err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	if s.label, err = ort.NewEmptyTensor[int64](ort.NewShape(1)); err != nil {
		s.destroy()
		return nil, fmt.Errorf("create label tensor: %w", err)
	}
	if s.probs, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(meta.NumClasses))); err != nil {
		s.destroy()
		return nil, fmt.Errorf("create probability tensor: %w", err)
	}
	s.session, err = ort.NewAdvancedSession(path,
		[]string{meta.InputName}, []string{meta.LabelOutput, meta.ProbabilityOutput},
		[]ort.ArbitraryTensor{s.input}, []ort.ArbitraryTensor{s.label, s.probs},
		nil)
	if err != nil {
		s.destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	return s, nil
}

// run checks out a session, evaluates v and hands the bound outputs to read.
func (o *ONNX) run(ctx context.Context, v model.FeatureVector, read func(*onnxSession)) error {
	s, err := o.pool.acquire(ctx)
	if err != nil {
		return err
	}
	defer o.pool.release(s)

	in := s.input.GetData()
	for i, x := range v {
		in[i] = float32(x)
	}
	if err = s.session.Run(); err != nil {
		return fmt.Errorf("onnx run: %w: %w", err, model.ErrInference)
	}
	read(s)
	return nil
}

// Classify returns the graph's label output.
func (o *ONNX) Classify(ctx context.Context, v model.FeatureVector) (model.RawLabel, error) {
	var label model.RawLabel
	err := o.run(ctx, v, func(s *onnxSession) {
		label = model.RawLabel(s.label.GetData()[0])
	})
	return label, err
}

// ClassifyWithDistribution returns the graph's probability output.
func (o *ONNX) ClassifyWithDistribution(ctx context.Context, v model.FeatureVector) ([]float64, error) {
	dist := make([]float64, o.meta.NumClasses)
	err := o.run(ctx, v, func(s *onnxSession) {
		for i, p := range s.probs.GetData() {
			dist[i] = float64(p)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := checkDistribution(dist, o.meta.NumClasses); err != nil {
		return nil, err
	}
	return dist, nil
}

// NumClasses is the width of the probability output.
func (o *ONNX) NumClasses() int { return o.meta.NumClasses }

// Close waits for in-flight runs, then releases every session and the
// runtime environment.
func (o *ONNX) Close() error {
	if !o.pool.close((*onnxSession).destroy) {
		return nil
	}
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		return ort.DestroyEnvironment()
	}
	return nil
}
