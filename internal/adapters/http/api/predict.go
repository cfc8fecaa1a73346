package api

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/aneeb02/footyPredatorr/internal/domain/features"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	"github.com/aneeb02/footyPredatorr/internal/domain/pipeline"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// PredictHandler handles /predict.
type PredictHandler struct {
	deps    Predictor
	maxBody int64
	logger  logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Predictor) *PredictHandler {
	return &PredictHandler{deps: deps, maxBody: defaultMaxBodyBytes, logger: logger.Nop()}
}

// schemaResponse describes the form a client should render.
type schemaResponse struct {
	Fields  []features.Field `json:"fields"`
	Classes []string         `json:"classes"`
}

// HandlePredict serves the form schema on GET and runs a prediction on POST.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, schemaResponse{Fields: features.Fields(), Classes: h.deps.Classes()})
	case http.MethodPost:
		h.predict(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *PredictHandler) predict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"

	raw, err := h.decode(w, r)
	if err != nil {
		switch {
		case errors.Is(err, ErrBodyTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", WrapKind(op, ErrBodyTooLarge, err))
		case errors.Is(err, ErrUnsupportedType):
			writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", Wrap(op, err))
		default:
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		}
		return
	}

	res, err := h.deps.Predict(r.Context(), raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *PredictHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotReady) {
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
		return
	}
	kind := pipeline.KindOf(err)
	var msg error = err
	var f *pipeline.Failure
	if errors.As(err, &f) {
		msg = errors.New(f.Message)
	}
	if kind == pipeline.KindInput {
		writeError(w, http.StatusBadRequest, string(kind), msg)
		return
	}
	logFailure(r, h.logger, "prediction failed", err)
	writeError(w, http.StatusInternalServerError, string(kind), msg)
}

// decode reads a JSON object or a form body into raw input. An empty JSON
// body is an empty input.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request) (model.RawInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, err
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		return decodeJSON(r.Body)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, tooLarge(err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(h.maxBody); err != nil {
			return nil, tooLarge(err)
		}
	default:
		return nil, ErrUnsupportedType
	}

	raw := make(model.RawInput, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			raw[k] = vs[0]
		}
	}
	return raw, nil
}

func decodeJSON(body io.Reader) (model.RawInput, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, tooLarge(err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return model.RawInput{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw model.RawInput
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.New("body must be a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("body must contain a single JSON object")
	}
	if raw == nil {
		raw = model.RawInput{}
	}
	return raw, nil
}

func tooLarge(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return ErrBodyTooLarge
	}
	return err
}
