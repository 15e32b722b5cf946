package consensus

import (
	"math"

	"github.com/matchpulse/betengine/pkg/config"
	"gonum.org/v1/gonum/stat"
)

// Signal is a model head's stance, a closed set.
type Signal string

const (
	SignalStrongBuy Signal = "STRONG_BUY"
	SignalBuy       Signal = "BUY"
	SignalHold      Signal = "HOLD"
	SignalSell      Signal = "SELL"
	SignalSkip      Signal = "SKIP"
)

// IsPositive reports whether the signal backs the pick.
func (s Signal) IsPositive() bool {
	return s == SignalStrongBuy || s == SignalBuy
}

// Divergence classifications.
const (
	DivergenceNone        = ""
	DivergenceSingleAgent = "SINGLE_AGENT_DIVERGENCE"
	DivergenceGeneral     = "GENERAL_DISAGREEMENT"
	DivergenceConsensus   = "CONSENSUS"
)

// Vote is one model head's opinion on a pick.
type Vote struct {
	ModelName           string  `json:"model_name"`
	Signal              Signal  `json:"signal"`
	Confidence          float64 `json:"confidence"` // 0-100
	MarketSuggested     string  `json:"market_suggested"`
	ProbabilityEstimate float64 `json:"probability_estimate"`
	Reasoning           string  `json:"reasoning"`
	Weight              float64 `json:"weight"`
}

// Report is what the decision gate consumes. The engine never chooses a
// market; it only measures agreement.
type Report struct {
	Votes         []Vote   `json:"votes"`
	PositiveCount int      `json:"positive_count"`
	Total         int      `json:"total"`
	Score         float64  `json:"score"` // weighted avg confidence after damping/bonus
	RawScore      float64  `json:"raw_score"`
	Sigma         float64  `json:"sigma"`
	Strength      string   `json:"strength"` // none | weak | medium | strong
	Divergence    string   `json:"divergence,omitempty"`
	Outliers      []string `json:"outliers,omitempty"`
}

// Engine aggregates votes under the configured thresholds.
type Engine struct {
	cfg *config.EngineConfig
}

func NewEngine(cfg *config.EngineConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Aggregate computes counts, the weighted mean confidence, the spread,
// and the divergence classification. A single outlier is surfaced as a
// signal, not punished; general disagreement damps the score.
func (e *Engine) Aggregate(votes []Vote) Report {
	r := Report{Votes: votes, Total: len(votes)}
	if len(votes) == 0 {
		r.Strength = StrengthNone
		return r
	}

	confidences := make([]float64, len(votes))
	weights := make([]float64, len(votes))
	for i, v := range votes {
		confidences[i] = v.Confidence
		w := v.Weight
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		if v.Signal.IsPositive() {
			r.PositiveCount++
		}
	}

	mean := stat.Mean(confidences, weights)
	r.RawScore = mean
	if len(votes) > 1 {
		r.Sigma = math.Sqrt(stat.Variance(confidences, weights))
	}

	for i, v := range votes {
		if math.Abs(confidences[i]-mean) > e.cfg.OutlierThreshold {
			r.Outliers = append(r.Outliers, v.ModelName)
		}
	}

	r.Score = mean
	switch {
	case len(r.Outliers) == 1:
		// potential information asymmetry: flag it, keep the score; the
		// lone dissenter dominates sigma, so sigma is not consulted here
		r.Divergence = DivergenceSingleAgent
	case len(r.Outliers) > 1 || r.Sigma > e.cfg.DisagreementSigma:
		r.Divergence = DivergenceGeneral
		r.Score = e.dampedScore(mean, r.Sigma)
	default:
		r.Divergence = DivergenceConsensus
		// small tightness bonus, larger the tighter the votes sit
		tightness := (e.cfg.DisagreementSigma - r.Sigma) / e.cfg.DisagreementSigma
		r.Score = math.Min(100, mean*(1+0.05*tightness))
	}

	r.Strength = e.strength(r)
	return r
}

// dampedScore applies the disagreement penalty. The penalty is zero at
// the sigma threshold and grows linearly with the spread, floored at
// mean times DampingFactor, which keeps the score continuous across
// the consensus boundary: raising every head's confidence never lowers
// the aggregate.
func (e *Engine) dampedScore(mean, sigma float64) float64 {
	over := sigma - e.cfg.DisagreementSigma
	if over <= 0 {
		return mean
	}
	damped := mean - 2*(1-e.cfg.DampingFactor)*over
	if floor := mean * e.cfg.DampingFactor; damped < floor {
		return floor
	}
	return damped
}

// Strength labels.
const (
	StrengthNone   = "none"
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

// StrengthRank orders strength labels for threshold comparisons.
func StrengthRank(s string) int {
	switch s {
	case StrengthStrong:
		return 3
	case StrengthMedium:
		return 2
	case StrengthWeak:
		return 1
	default:
		return 0
	}
}

func (e *Engine) strength(r Report) string {
	if r.Total == 0 || r.PositiveCount == 0 {
		return StrengthNone
	}
	frac := float64(r.PositiveCount) / float64(r.Total)
	switch {
	case frac >= 0.8 && r.Score >= 60 && r.Divergence != DivergenceGeneral:
		return StrengthStrong
	case frac >= 0.6 && r.Score >= 45:
		return StrengthMedium
	case frac >= 0.4:
		return StrengthWeak
	default:
		return StrengthNone
	}
}
