// Package artifact reads and writes the serialized model artifacts. Every
// reader accepts plain or gzip-compressed files.
package artifact

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/aneeb02/footyPredatorr/internal/domain/labels"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
)

// DefaultLevel is the gzip level used by Compress.
const DefaultLevel = 3

// labelEncoderVersion is the only label encoder format understood.
const labelEncoderVersion = 1

var gzipMagic = []byte{0x1f, 0x8b}

// Artifact errors. Load failures also wrap model.ErrArtifactLoad.
var (
	ErrEmptyPath  = errors.New("artifact path is empty")
	ErrBadVersion = errors.New("unsupported artifact version")
	ErrSamePath   = errors.New("source and destination are the same file")
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Open returns a reader over the decompressed content of path.
func Open(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	br := bufio.NewReader(f)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, fmt.Errorf("read artifact header: %w", err)
	}
	if !bytes.Equal(head, gzipMagic) {
		return &readCloser{Reader: br, closers: []io.Closer{f}}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
}

// ReadFile returns the decompressed content of path.
func ReadFile(path string) ([]byte, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return data, nil
}

// DecodeJSON reads path and unmarshals it into v.
func DecodeJSON(path string, v any) error {
	data, err := ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

type labelEncoderFile struct {
	Version int      `json:"version"`
	Classes []string `json:"classes"`
}

// LoadLabelEncoder reads the versioned class list at path.
func LoadLabelEncoder(path string) (*labels.Encoder, error) {
	var f labelEncoderFile
	if err := DecodeJSON(path, &f); err != nil {
		return nil, fmt.Errorf("label encoder: %w: %w", model.ErrArtifactLoad, err)
	}
	if f.Version != labelEncoderVersion {
		return nil, fmt.Errorf("label encoder version %d: %w: %w", f.Version, model.ErrArtifactLoad, ErrBadVersion)
	}
	enc, err := labels.New(f.Classes)
	if err != nil {
		return nil, fmt.Errorf("label encoder: %w: %w", model.ErrArtifactLoad, err)
	}
	return enc, nil
}

// Stats reports the sizes seen by Compress.
type Stats struct {
	Source      string
	Destination string
	InputBytes  int64
	OutputBytes int64
}

// Compress gzips src into dst at level (DefaultLevel when zero).
func Compress(src, dst string, level int) (Stats, error) {
	st := Stats{Source: src, Destination: dst}
	if src == "" || dst == "" {
		return st, ErrEmptyPath
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		return st, ErrSamePath
	}
	if level == 0 {
		level = DefaultLevel
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return st, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return st, fmt.Errorf("create destination: %w", err)
	}

	zw, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return st, fmt.Errorf("gzip level %d: %w", level, err)
	}
	zw.Name = filepath.Base(src)

	st.InputBytes, err = io.Copy(zw, in)
	if err == nil {
		err = zw.Close()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return st, fmt.Errorf("compress %s: %w", src, err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return st, fmt.Errorf("stat destination: %w", err)
	}
	st.OutputBytes = info.Size()
	return st, nil
}
