// Package types contains the read shapes returned by upstream lookups.
package types

import "time"

// WikiSummary is the encyclopedia extract for a player.
type WikiSummary struct {
	PlayerName string `json:"player_name"`
	Summary    string `json:"summary"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Team is a side in a match.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Crest     string `json:"crest,omitempty"`
}

// Competition identifies the league or cup a match belongs to.
type Competition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Goals holds a partial score; nil means the value is not known yet.
type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Score is the scoreline of a match.
type Score struct {
	Winner   string `json:"winner,omitempty"`
	FullTime Goals  `json:"fullTime"`
}

// Match is the minimal match record read from the match-data service.
type Match struct {
	ID          int         `json:"id"`
	UTCDate     time.Time   `json:"utcDate"`
	Status      string      `json:"status"`
	Matchday    int         `json:"matchday,omitempty"`
	Competition Competition `json:"competition"`
	HomeTeam    Team        `json:"homeTeam"`
	AwayTeam    Team        `json:"awayTeam"`
	Score       Score       `json:"score"`
}

// MatchFeed is what the live endpoint renders. IsLive is false when the
// matches come from a past date window.
type MatchFeed struct {
	IsLive   bool      `json:"is_live"`
	DateFrom string    `json:"date_from,omitempty"`
	DateTo   string    `json:"date_to,omitempty"`
	Matches  []Match   `json:"matches"`
	Fetched  time.Time `json:"fetched_at"`
}
