package models

import "time"

// MatchRequest is the upstream description of one fixture to analyze,
// with quoted prices keyed by market label. Team names arrive raw and
// go through the resolver before any lookup.
type MatchRequest struct {
	MatchID  string    `json:"match_id" binding:"required"`
	HomeTeam string    `json:"home_team" binding:"required"`
	AwayTeam string    `json:"away_team" binding:"required"`
	League   string    `json:"league"`
	Referee  string    `json:"referee"`
	KickOff  time.Time `json:"kick_off"`

	Prices map[string]float64 `json:"prices" binding:"required"`

	Blacklisted    bool `json:"blacklisted,omitempty"`
	ExtremeWeather bool `json:"extreme_weather,omitempty"`
	HighStakes     bool `json:"high_stakes,omitempty"`
}

// AnalyzeRequest is a batch of fixtures for one run.
type AnalyzeRequest struct {
	Matches []MatchRequest `json:"matches" binding:"required,min=1"`
	TopK    int            `json:"top_k,omitempty"`
}
