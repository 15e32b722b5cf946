package models

import "time"

// MatchContext is the one-pass bag of everything the evaluators consult
// for a single match. A nil field means the datum was absent upstream --
// never zero-valued -- so layers can tell "no data" from "bad data".
type MatchContext struct {
	MatchID  string    `json:"match_id"`
	League   string    `json:"league"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	KickOff  time.Time `json:"kick_off"`

	HomeIntel *TeamIntelligence `json:"home_intel,omitempty"`
	AwayIntel *TeamIntelligence `json:"away_intel,omitempty"`

	HomeClass *TeamClass `json:"home_class,omitempty"`
	AwayClass *TeamClass `json:"away_class,omitempty"`

	HomeMomentum *TeamMomentum `json:"home_momentum,omitempty"`
	AwayMomentum *TeamMomentum `json:"away_momentum,omitempty"`

	Tactical *TacticalCell   `json:"tactical,omitempty"`
	Referee  *RefereeProfile `json:"referee,omitempty"`
	H2H      *HeadToHead     `json:"h2h,omitempty"`

	HomeProfile  *MarketProfile `json:"home_profile,omitempty"`
	AwayProfile  *MarketProfile `json:"away_profile,omitempty"`
	RealityCheck *RealityCheck  `json:"reality_check,omitempty"`

	// Match-level risk flags set by the ETL or operators.
	Blacklisted    bool `json:"blacklisted,omitempty"`
	ExtremeWeather bool `json:"extreme_weather,omitempty"`
	HighStakes     bool `json:"high_stakes,omitempty"` // derby, decider, relegation six-pointer

	Traps []MarketTrap `json:"traps,omitempty"`
	// TrapTableUnreadable distinguishes "no traps recorded" from "the trap
	// table could not be read"; the latter fails closed.
	TrapTableUnreadable bool `json:"trap_table_unreadable,omitempty"`

	// Steam is keyed by market label.
	Steam map[string]*SharpMoneyRecord `json:"steam,omitempty"`

	// Prices is the quoted decimal price per market label.
	Prices map[string]float64 `json:"prices,omitempty"`
}

// TrapFor returns the active trap row for a market, if any.
func (c *MatchContext) TrapFor(market string) *MarketTrap {
	for i := range c.Traps {
		t := &c.Traps[i]
		if t.MarketType == market && t.IsActive {
			return t
		}
	}
	return nil
}

// SteamFor returns the steam record for a market, if any.
func (c *MatchContext) SteamFor(market string) *SharpMoneyRecord {
	if c.Steam == nil {
		return nil
	}
	return c.Steam[market]
}
