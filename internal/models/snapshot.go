package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BetSnapshot is the immutable audit record of a single decision. It is
// written once per pick (including VETO and SKIP); only the settlement
// fields are filled later, last-writer-wins.
type BetSnapshot struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	BetID   string `gorm:"type:uuid;uniqueIndex;not null" json:"bet_id"`
	MatchID string `gorm:"index;not null" json:"match_id"`
	Teams   string `json:"teams"`

	SnapshotData  datatypes.JSON `gorm:"type:jsonb" json:"snapshot_data"` // full serialized Pick, byte-for-byte replayable
	HomeDNA       datatypes.JSON `gorm:"type:jsonb" json:"home_dna"`
	AwayDNA       datatypes.JSON `gorm:"type:jsonb" json:"away_dna"`
	FrictionData  datatypes.JSON `gorm:"type:jsonb" json:"friction_matrix"`
	ModelWeights  datatypes.JSON `gorm:"type:jsonb" json:"model_weights"`
	OddsSnapshot  datatypes.JSON `gorm:"type:jsonb" json:"odds_snapshot"`

	ConsensusScore float64 `json:"consensus_score"`
	ConsensusCount int     `json:"consensus_count"`
	Conviction     string  `json:"conviction"`

	FinalMarket      string  `gorm:"index" json:"final_market"`
	FinalOdds        float64 `json:"final_odds"`
	FinalStake       float64 `json:"final_stake"`
	FinalProbability float64 `json:"final_probability"`
	FinalEdge        float64 `json:"final_edge"`
	ExpectedValue    float64 `json:"expected_value"`
	FinalAction      string  `gorm:"index" json:"final_action"`
	FinalScore       float64 `json:"final_score"`

	Result     string           `gorm:"index" json:"result,omitempty"` // WIN | LOSS | PUSH | VOID
	ProfitLoss *decimal.Decimal `gorm:"type:numeric(14,4)" json:"profit_loss,omitempty"`
	SettledAt  *time.Time       `json:"settled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	Votes []ModelVote `gorm:"foreignKey:BetID;references:BetID" json:"votes,omitempty"`
}

func (BetSnapshot) TableName() string {
	return "bet_snapshots"
}

// IsSettled reports whether settlement already ran for this snapshot.
func (s *BetSnapshot) IsSettled() bool {
	return s.SettledAt != nil
}

// ModelVote is one model head's opinion, owned by its snapshot.
type ModelVote struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	BetID               string         `gorm:"type:uuid;index;not null" json:"bet_id"`
	ModelName           string         `gorm:"not null" json:"model_name"`
	Signal              string         `gorm:"not null" json:"signal"` // STRONG_BUY | BUY | HOLD | SELL | SKIP
	Confidence          float64        `json:"confidence"`             // 0-100
	MarketSuggested     string         `json:"market_suggested"`
	ProbabilityEstimate float64        `json:"probability_estimate"`
	Reasoning           string         `json:"reasoning"`
	RawData             datatypes.JSON `gorm:"type:jsonb" json:"raw_data,omitempty"`
	AgreedWithConsensus bool           `json:"agreed_with_consensus"`
	WeightUsed          float64        `json:"weight_used"`
	WasCorrect          *bool          `json:"was_correct,omitempty"` // back-filled at settlement
	CreatedAt           time.Time      `json:"created_at"`
}

func (ModelVote) TableName() string {
	return "model_votes"
}
