package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aneeb02/footyPredatorr/internal/adapters/clients"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type wikiQuery struct {
	Player string `validate:"required,max=200"`
}

type liveQuery struct {
	DateFrom string `validate:"required_with=DateTo,omitempty,datetime=2006-01-02"`
	DateTo   string `validate:"required_with=DateFrom,omitempty,datetime=2006-01-02"`
}

// WikiHandler handles GET /wiki.
type WikiHandler struct {
	deps   Lookups
	logger logger.Logger
}

// NewWikiHandler creates a new wiki handler.
func NewWikiHandler(deps Lookups) *WikiHandler {
	return &WikiHandler{deps: deps, logger: logger.Nop()}
}

// HandleWiki handles GET /wiki?player=NAME.
func (h *WikiHandler) HandleWiki(w http.ResponseWriter, r *http.Request) {
	const op = "api.wiki"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := wikiQuery{Player: strings.TrimSpace(r.URL.Query().Get("player"))}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, errors.New("player is required")))
		return
	}

	summary, err := h.deps.Wiki(r.Context(), q.Player)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", errors.New("player not found"))
		default:
			lookupFailed(w, r, h.logger, "could not fetch player summary", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// LiveHandler handles GET /live.
type LiveHandler struct {
	deps   Lookups
	logger logger.Logger
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps Lookups) *LiveHandler {
	return &LiveHandler{deps: deps, logger: logger.Nop()}
}

// HandleLive handles GET /live[?dateFrom=YYYY-MM-DD&dateTo=YYYY-MM-DD].
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	const op = "api.live"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := liveQuery{DateFrom: r.URL.Query().Get("dateFrom"), DateTo: r.URL.Query().Get("dateTo")}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			NewKind(op, errors.New("dateFrom and dateTo must both be YYYY-MM-DD")))
		return
	}

	feed, err := h.deps.Matches(r.Context(), q.DateFrom, q.DateTo)
	if err != nil {
		lookupFailed(w, r, h.logger, "could not fetch match data", err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// lookupFailed maps upstream lookup errors onto HTTP statuses.
func lookupFailed(w http.ResponseWriter, r *http.Request, l logger.Logger, msg string, err error) {
	switch {
	case errors.Is(err, clients.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, model.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", errors.New(msg))
	default:
		logFailure(r, l, msg, err)
		writeError(w, http.StatusBadGateway, "upstream_error", errors.New(msg))
	}
}
