package models

import (
	"time"

	"github.com/lib/pq"
)

// TeamIntelligence is the rolling per-team profile maintained by the ETL.
// Every evaluator reads it; nothing in the engine writes it.
type TeamIntelligence struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	TeamName     string `gorm:"uniqueIndex;not null" json:"team_name"`
	CurrentStyle string `json:"current_style"` // closed set: possession, pressing, counter, defensive, attacking, balanced

	HomeOver25Rate     float64 `json:"home_over25_rate"`
	HomeBTTSRate       float64 `json:"home_btts_rate"`
	HomeGoalsScoredAvg float64 `json:"home_goals_scored_avg"`
	HomeGoalsConcAvg   float64 `json:"home_goals_conceded_avg"`
	HomeCleanSheetRate float64 `json:"home_clean_sheet_rate"`

	AwayOver25Rate     float64 `json:"away_over25_rate"`
	AwayBTTSRate       float64 `json:"away_btts_rate"`
	AwayGoalsScoredAvg float64 `json:"away_goals_scored_avg"`
	AwayGoalsConcAvg   float64 `json:"away_goals_conceded_avg"`
	AwayCleanSheetRate float64 `json:"away_clean_sheet_rate"`

	BTTSTendency  string `json:"btts_tendency"`  // low | medium | high
	GoalsTendency string `json:"goals_tendency"` // low | medium | high

	XGForPerMatch        float64 `json:"xg_for_per_match"`
	XGAgainstPerMatch    float64 `json:"xg_against_per_match"`
	OverperformanceGoals float64 `json:"overperformance_goals"` // actual minus expected, positive = running hot

	UpdatedAt time.Time `json:"updated_at"`
}

func (TeamIntelligence) TableName() string {
	return "team_intelligence"
}

// TeamClass carries the stable (season-scale) quality attributes.
type TeamClass struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TeamName      string         `gorm:"uniqueIndex;not null" json:"team_name"`
	Tier          string         `gorm:"not null" json:"tier"` // A, B, C, D
	PowerIndex    float64        `json:"power_index"`          // 0-100
	AttackRating  float64        `json:"attack_rating"`        // 0-100
	DefenseRating float64        `json:"defense_rating"`       // 0-100, higher = tighter
	PlayingStyle  string         `json:"playing_style"`
	BigGameFactor float64        `json:"big_game_factor"`
	StarPlayers   pq.StringArray `gorm:"type:text[]" json:"star_players"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (TeamClass) TableName() string {
	return "team_class"
}

// TierValue maps A..D onto a numeric scale for power-difference math.
func (tc *TeamClass) TierValue() int {
	switch tc.Tier {
	case "A":
		return 4
	case "B":
		return 3
	case "C":
		return 2
	case "D":
		return 1
	default:
		return 0
	}
}

// TeamMomentum is refreshed between runs with recent-form signals.
type TeamMomentum struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	TeamName           string    `gorm:"uniqueIndex;not null" json:"team_name"`
	MomentumScore      float64   `json:"momentum_score"` // 0-100
	FormString         string    `json:"form_string"`    // e.g. "WWDLW", most recent last
	GoalsScoredLast5   int       `json:"goals_scored_last_5"`
	GoalsConcededLast5 int       `json:"goals_conceded_last_5"`
	KeyPlayerAbsent    bool      `json:"key_player_absent"`
	CoachUnderPressure bool      `json:"coach_under_pressure"`
	NewCoachBounce     bool      `json:"new_coach_bounce"`
	CupFatigue         bool      `json:"cup_fatigue"` // continental fixture inside the last 4 days
	CongestedSchedule  bool      `json:"congested_schedule"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (TeamMomentum) TableName() string {
	return "team_momentum"
}

// TeamNameMapping reconciles source spellings with canonical names.
// Many-to-one; entries are additive over time.
type TeamNameMapping struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	SourceName     string `gorm:"uniqueIndex;not null" json:"source_name"`
	CanonicalName  string `gorm:"index;not null" json:"canonical_name"`
	NormalizedName string `gorm:"index" json:"normalized_name"`
	IsVerified     bool   `gorm:"default:false" json:"is_verified"`
}

func (TeamNameMapping) TableName() string {
	return "team_name_mapping"
}
