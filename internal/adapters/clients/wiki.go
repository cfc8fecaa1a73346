package clients

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/aneeb02/footyPredatorr/internal/domain/types"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// DefaultWikiBaseURL is the English Wikipedia REST API.
const DefaultWikiBaseURL = "https://en.wikipedia.org/api/rest_v1"

const noSummary = "No summary available"

// Wiki fetches page summaries from the encyclopedia.
type Wiki struct {
	up *upstream
}

// NewWiki creates an encyclopedia client rooted at baseURL.
func NewWiki(baseURL string, opts ...Option) *Wiki {
	if baseURL == "" {
		baseURL = DefaultWikiBaseURL
	}
	return &Wiki{up: newUpstream("wiki", newCommon(strings.TrimRight(baseURL, "/"), opts))}
}

type wikiSummary struct {
	Extract   *string `json:"extract"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// Summary returns the page summary for player. Any 4xx reply is ErrNotFound.
func (w *Wiki) Summary(ctx context.Context, player string) (types.WikiSummary, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return types.WikiSummary{}, fmt.Errorf("player name is empty: %w", ErrInvalidArgument)
	}

	title := url.PathEscape(strings.ReplaceAll(player, " ", "_"))
	body, err := w.up.get(ctx, w.up.baseURL+"/page/summary/"+title, nil)
	if err != nil {
		w.up.logger.Debug(ctx, "wiki lookup failed", logger.String("player", player), logger.Error(err))
		return types.WikiSummary{}, err
	}

	var s wikiSummary
	if err := json.Unmarshal(body, &s); err != nil {
		return types.WikiSummary{}, fmt.Errorf("wiki: decode summary: %w: %w", ErrUpstream, err)
	}

	out := types.WikiSummary{PlayerName: player, Summary: noSummary}
	if s.Extract != nil {
		out.Summary = *s.Extract
	}
	if s.Thumbnail != nil {
		out.ImageURL = s.Thumbnail.Source
	}
	return out, nil
}
