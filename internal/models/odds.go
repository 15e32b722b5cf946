package models

import "time"

// SharpMoneyRecord is one steam observation for (match, market), either
// produced by the upstream feed or derived from odds history by the steam
// analyzer.
type SharpMoneyRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	MatchID           string    `gorm:"index:idx_sharp_match;not null" json:"match_id"`
	MarketType        string    `gorm:"index:idx_sharp_match;not null" json:"market_type"`
	OpeningOdds       float64   `json:"opening_odds"`
	CurrentOdds       float64   `json:"current_odds"`
	ClosingOdds       float64   `json:"closing_odds"`
	MovementPct       float64   `json:"movement_pct"` // negative = shortening
	MovementDirection string    `json:"movement_direction"` // shortening | drifting | stable
	IsSharpMove       bool      `json:"is_sharp_move"`
	BookmakerCount    int       `json:"bookmaker_count"`
	CollectedAt       time.Time `json:"collected_at"`
}

func (SharpMoneyRecord) TableName() string {
	return "match_steam_analysis"
}

const (
	MovementShortening = "shortening"
	MovementDrifting   = "drifting"
	MovementStable     = "stable"
)

// OddsQuote is one collected bookmaker price, the raw material for steam
// calculation and price aggregation.
type OddsQuote struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MatchID      string    `gorm:"index:idx_odds_match;not null" json:"match_id"`
	MarketType   string    `gorm:"index:idx_odds_match;not null" json:"market_type"`
	Bookmaker    string    `gorm:"index" json:"bookmaker"`
	Price        float64   `json:"price"`
	CollectedAt  time.Time `gorm:"index" json:"collected_at"`
	CommenceTime time.Time `json:"commence_time"`
}

func (OddsQuote) TableName() string {
	return "odds_history"
}
