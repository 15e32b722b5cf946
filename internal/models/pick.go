package models

// LayerScore is one evaluator's bounded signed contribution.
type LayerScore struct {
	Score       int    `json:"score"`
	Reason      string `json:"reason"`
	DataPresent bool   `json:"data_present"`
}

// Pick is the per-market decision object assembled by the pipeline.
//
// Invariants: FinalScore in [0, 99]; Stake >= 0; TrapFlag set implies
// Action VETO and FinalScore 0; coverage below the floor implies LowData.
type Pick struct {
	MatchID  string `json:"match_id"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	League   string `json:"league"`
	Market   string `json:"market"`

	Price       float64 `json:"price"`
	ImpliedProb float64 `json:"implied_prob"`
	ModelProb   float64 `json:"model_prob"`
	Edge        float64 `json:"edge"`

	LayerScores map[string]LayerScore `json:"layer_scores"`
	Warnings    []string              `json:"warnings,omitempty"`

	TrapFlag          bool   `json:"trap_flag"`
	TrapReason        string `json:"trap_reason,omitempty"`
	AlternativeMarket string `json:"alternative_market,omitempty"`

	DataCoverage float64 `json:"data_coverage"`

	BaseScore       float64 `json:"base_score"`
	VarianceFactor  float64 `json:"variance_factor"`
	RiskMultiplier  float64 `json:"risk_multiplier"`
	TrendMultiplier float64 `json:"trend_multiplier"`
	MLMultiplier    float64 `json:"ml_multiplier"`
	MLBonus         float64 `json:"ml_bonus"`
	FinalScore      float64 `json:"final_score"`

	Action    Action    `json:"action"`
	State     PickState `json:"state"`
	Stake     float64   `json:"stake"` // fraction of bankroll
	LowData   bool      `json:"low_data"`
	SweetSpot bool      `json:"sweet_spot"`

	ConsensusStrength string  `json:"consensus_strength"` // none | weak | medium | strong
	ConsensusCount    int     `json:"consensus_count"`
	ConsensusScore    float64 `json:"consensus_score"`
	Divergence        string  `json:"divergence,omitempty"`
}

// NewPick builds a Pick in its initial state from a quoted price.
func NewPick(matchID, home, away, league, market string, price float64) *Pick {
	implied := 0.0
	if price > 1 {
		implied = 1 / price
	}
	return &Pick{
		MatchID:         matchID,
		HomeTeam:        home,
		AwayTeam:        away,
		League:          league,
		Market:          market,
		Price:           price,
		ImpliedProb:     implied,
		LayerScores:     make(map[string]LayerScore),
		State:           PickStateNew,
		Action:          ActionSkip,
		VarianceFactor:  1.0,
		RiskMultiplier:  1.0,
		TrendMultiplier: 1.0,
		MLMultiplier:    1.0,
	}
}

// LayerTotal sums the signed layer contributions.
func (p *Pick) LayerTotal() int {
	total := 0
	for _, ls := range p.LayerScores {
		total += ls.Score
	}
	return total
}

// CoverageCount returns how many layers actually consulted their data.
func (p *Pick) CoverageCount() int {
	n := 0
	for _, ls := range p.LayerScores {
		if ls.DataPresent {
			n++
		}
	}
	return n
}

// AddWarning appends a non-fatal evaluator warning.
func (p *Pick) AddWarning(w string) {
	p.Warnings = append(p.Warnings, w)
}
