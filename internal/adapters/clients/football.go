package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/aneeb02/footyPredatorr/internal/domain/types"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// DefaultFootballBaseURL is the football-data.org v4 API.
const DefaultFootballBaseURL = "http://api.football-data.org/v4"

// DateLayout is the day format the match-data API expects.
const DateLayout = "2006-01-02"

// Football fetches match lists from the match-data service.
type Football struct {
	up *upstream
}

// NewFootball creates a match-data client rooted at baseURL.
func NewFootball(baseURL string, opts ...Option) *Football {
	if baseURL == "" {
		baseURL = DefaultFootballBaseURL
	}
	return &Football{up: newUpstream("football", newCommon(strings.TrimRight(baseURL, "/"), opts))}
}

type matchList struct {
	Matches []types.Match `json:"matches"`
}

// Matches lists matches, optionally bounded by dateFrom and dateTo
// (YYYY-MM-DD). Both or neither must be set.
func (f *Football) Matches(ctx context.Context, dateFrom, dateTo string) ([]types.Match, error) {
	if (dateFrom == "") != (dateTo == "") {
		return nil, fmt.Errorf("dateFrom and dateTo go together: %w", ErrInvalidArgument)
	}

	u := f.up.baseURL + "/matches"
	if dateFrom != "" {
		q := url.Values{"dateFrom": {dateFrom}, "dateTo": {dateTo}}
		u += "?" + q.Encode()
	}

	var header http.Header
	if f.up.apiKey != "" {
		header = http.Header{"X-Auth-Token": {f.up.apiKey}}
	}

	body, err := f.up.get(ctx, u, header)
	if err != nil {
		return nil, err
	}
	var list matchList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("football: decode matches: %w: %w", ErrUpstream, err)
	}
	if list.Matches == nil {
		list.Matches = []types.Match{}
	}
	return list.Matches, nil
}

// Live returns today's matches. When that fails or is empty it falls back to
// the past fallback-days window, flagging the feed as not live.
func (f *Football) Live(ctx context.Context) (types.MatchFeed, error) {
	now := f.up.now().UTC()
	matches, err := f.Matches(ctx, "", "")
	if err == nil && len(matches) > 0 {
		return types.MatchFeed{IsLive: true, Matches: matches, Fetched: now}, nil
	}
	if err != nil {
		f.up.logger.Warn(ctx, "live matches unavailable, falling back to past window", logger.Error(err))
	}

	from := now.AddDate(0, 0, -f.up.fallbackDays).Format(DateLayout)
	to := now.Format(DateLayout)
	return f.Window(ctx, from, to)
}

// Window returns the matches played between from and to.
func (f *Football) Window(ctx context.Context, from, to string) (types.MatchFeed, error) {
	fromT, err := time.Parse(DateLayout, from)
	if err != nil {
		return types.MatchFeed{}, fmt.Errorf("dateFrom %q: %w", from, ErrInvalidArgument)
	}
	toT, err := time.Parse(DateLayout, to)
	if err != nil {
		return types.MatchFeed{}, fmt.Errorf("dateTo %q: %w", to, ErrInvalidArgument)
	}
	if toT.Before(fromT) {
		return types.MatchFeed{}, fmt.Errorf("dateTo before dateFrom: %w", ErrInvalidArgument)
	}

	matches, err := f.Matches(ctx, from, to)
	if err != nil {
		return types.MatchFeed{}, err
	}
	return types.MatchFeed{
		DateFrom: from,
		DateTo:   to,
		Matches:  matches,
		Fetched:  f.up.now().UTC(),
	}, nil
}
