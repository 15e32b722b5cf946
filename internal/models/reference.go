package models

import (
	"time"

	"github.com/lib/pq"
)

// TacticalCell holds the empirical outcome rates for an unordered pair of
// playing styles. Cells below the sample threshold fall back to the neutral
// cell at lookup time.
type TacticalCell struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	StyleA          string  `gorm:"index:idx_style_pair;not null" json:"style_a"`
	StyleB          string  `gorm:"index:idx_style_pair;not null" json:"style_b"`
	BTTSProb        float64 `json:"btts_prob"`
	Over25Prob      float64 `json:"over25_prob"`
	Under25Prob     float64 `json:"under25_prob"`
	CleanSheetProb  float64 `json:"clean_sheet_prob"`
	AvgTotalGoals   float64 `json:"avg_total_goals"`
	SampleSize      int     `json:"sample_size"`
	ConfidenceLevel string  `json:"confidence_level"` // low | medium | high
}

func (TacticalCell) TableName() string {
	return "tactical_matrix"
}

// MinTacticalSample is the floor below which a cell is treated as neutral.
const MinTacticalSample = 20

// NeutralTacticalCell is the fallback when no reliable cell exists.
func NeutralTacticalCell() *TacticalCell {
	return &TacticalCell{
		StyleA:          "neutral",
		StyleB:          "neutral",
		BTTSProb:        0.50,
		Over25Prob:      0.50,
		Under25Prob:     0.50,
		CleanSheetProb:  0.30,
		AvgTotalGoals:   2.6,
		SampleSize:      0,
		ConfidenceLevel: "low",
	}
}

// RefereeProfile is the per-referee record; a league-average profile
// substitutes when the individual record is missing.
type RefereeProfile struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	RefereeName      string  `gorm:"index;not null" json:"referee_name"`
	League           string  `gorm:"index" json:"league"`
	AvgGoalsPerGame  float64 `json:"avg_goals_per_game"`
	UnderOverTend    string  `json:"under_over_tendency"` // under | neutral | over
	HomeBiasFactor   float64 `json:"home_bias_factor"`    // 1.0 = neutral
	MatchesOfficiate int     `json:"matches_officiated"`
	IsLeagueAverage  bool    `gorm:"-" json:"is_league_average,omitempty"`
}

func (RefereeProfile) TableName() string {
	return "referee_intelligence"
}

// HeadToHead summarises prior meetings of a team pair; lookup is symmetric.
type HeadToHead struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TeamA         string         `gorm:"index:idx_h2h_pair;not null" json:"team_a"`
	TeamB         string         `gorm:"index:idx_h2h_pair;not null" json:"team_b"`
	TotalMatches  int            `json:"total_matches"`
	BTTSPct       float64        `json:"btts_pct"`
	Over25Pct     float64        `json:"over25_pct"`
	AvgTotalGoals float64        `json:"avg_total_goals"`
	Last3BTTS     pq.StringArray `gorm:"type:text[]" json:"last3_btts"` // "yes"/"no", most recent first
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (HeadToHead) TableName() string {
	return "head_to_head"
}

// MarketProfile records which markets have historically worked for a team
// at a venue, and which to avoid.
type MarketProfile struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	TeamName          string         `gorm:"index:idx_profile_team;not null" json:"team_name"`
	Location          string         `gorm:"index:idx_profile_team;not null" json:"location"` // home | away
	BestMarket        string         `json:"best_market"`
	ConfidenceScore   float64        `json:"confidence_score"` // 0-100
	HistoricalSuccess float64        `json:"historical_success_rate"`
	AvoidMarkets      pq.StringArray `gorm:"type:text[]" json:"avoid_markets"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (MarketProfile) TableName() string {
	return "team_market_profiles"
}

// MarketTrap is an active veto predicate over (team, market).
type MarketTrap struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TeamName          string    `gorm:"index;not null" json:"team_name"`
	MarketType        string    `gorm:"not null" json:"market_type"`
	AlertLevel        string    `gorm:"not null" json:"alert_level"` // TRAP | DANGER
	AlertReason       string    `json:"alert_reason"`
	AlternativeMarket string    `json:"alternative_market"`
	IsActive          bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

func (MarketTrap) TableName() string {
	return "market_traps"
}

// RealityCheck is the pre-computed convergence signal between independent
// heuristics for a match.
type RealityCheck struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	MatchID           string  `gorm:"uniqueIndex;not null" json:"match_id"`
	ConvergenceStatus string  `json:"convergence_status"` // diverging | mixed | converging | strong
	RealityScore      float64 `json:"reality_score"`      // 0-100
}

func (RealityCheck) TableName() string {
	return "reality_check_results"
}
