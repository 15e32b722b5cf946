package orchestrator

import (
	"fmt"

	"github.com/matchpulse/betengine/internal/consensus"
	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/config"
)

// Model head weights. The probability engine and the ML head carry the
// most; the heuristics vote with less authority.
const (
	weightProbability = 2.0
	weightForm        = 1.5
	weightMarketFit   = 1.0
	weightML          = 2.0
	weightStyle       = 1.0
	weightScenario    = 1.0
)

// buildVotes collects the closed set of model-head opinions on a pick.
func buildVotes(p *models.Pick, ctx *models.MatchContext, mlConfidence float64, cfg *config.EngineConfig) []consensus.Vote {
	minEdge := cfg.MinEdgeFor(p.Market)
	votes := make([]consensus.Vote, 0, 6)

	votes = append(votes, probabilityVote(p, minEdge))
	if v, ok := formVote(p); ok {
		votes = append(votes, v)
	}
	if v, ok := marketFitVote(p); ok {
		votes = append(votes, v)
	}
	votes = append(votes, mlVote(p, mlConfidence))
	if v, ok := styleVote(p); ok {
		votes = append(votes, v)
	}
	votes = append(votes, scenarioVote(p))
	return votes
}

func signalForEdge(edge, minEdge float64) consensus.Signal {
	switch {
	case edge >= 2*minEdge:
		return consensus.SignalStrongBuy
	case edge >= minEdge:
		return consensus.SignalBuy
	case edge >= 0:
		return consensus.SignalHold
	default:
		return consensus.SignalSell
	}
}

func probabilityVote(p *models.Pick, minEdge float64) consensus.Vote {
	conf := p.ModelProb * 100
	if conf > 95 {
		conf = 95
	}
	return consensus.Vote{
		ModelName:           "probability_engine",
		Signal:              signalForEdge(p.Edge, minEdge),
		Confidence:          conf,
		MarketSuggested:     p.Market,
		ProbabilityEstimate: p.ModelProb,
		Reasoning:           fmt.Sprintf("model %.3f vs implied %.3f", p.ModelProb, p.ImpliedProb),
		Weight:              weightProbability,
	}
}

// formVote reads the momentum layer. The price-implied probability is
// deliberately NOT a head: it already enters through the edge, and
// voting it too would count the market twice.
func formVote(p *models.Pick) (consensus.Vote, bool) {
	ls, ok := p.LayerScores[config.LayerMomentum]
	if !ok || !ls.DataPresent {
		return consensus.Vote{}, false
	}
	sig := consensus.SignalHold
	conf := 50.0
	if ls.Score > 3 {
		sig, conf = consensus.SignalBuy, 55+float64(ls.Score)*2.5
	} else if ls.Score < -3 {
		sig, conf = consensus.SignalSell, 33
	}
	return consensus.Vote{
		ModelName:           "form_momentum",
		Signal:              sig,
		Confidence:          conf,
		MarketSuggested:     p.Market,
		ProbabilityEstimate: p.ModelProb,
		Reasoning:           ls.Reason,
		Weight:              weightForm,
	}, true
}

func marketFitVote(p *models.Pick) (consensus.Vote, bool) {
	ls, ok := p.LayerScores[config.LayerMarketProfile]
	if !ok || !ls.DataPresent {
		return consensus.Vote{}, false
	}
	sig := consensus.SignalHold
	conf := 50.0
	if ls.Score > 2 {
		sig, conf = consensus.SignalBuy, 55+float64(ls.Score)*3
	} else if ls.Score < -2 {
		sig, conf = consensus.SignalSell, 30
	}
	return consensus.Vote{
		ModelName:           "market_fit",
		Signal:              sig,
		Confidence:          conf,
		MarketSuggested:     p.Market,
		ProbabilityEstimate: p.ModelProb,
		Reasoning:           ls.Reason,
		Weight:              weightMarketFit,
	}, true
}

func mlVote(p *models.Pick, confidence float64) consensus.Vote {
	var sig consensus.Signal
	switch {
	case confidence >= 0.80:
		sig = consensus.SignalStrongBuy
	case confidence >= 0.60:
		sig = consensus.SignalBuy
	case confidence <= 0.35:
		sig = consensus.SignalSell
	default:
		sig = consensus.SignalHold
	}
	return consensus.Vote{
		ModelName:           "ml_classifier",
		Signal:              sig,
		Confidence:          confidence * 100,
		MarketSuggested:     p.Market,
		ProbabilityEstimate: confidence,
		Reasoning:           fmt.Sprintf("classifier confidence %.2f", confidence),
		Weight:              weightML,
	}
}

func styleVote(p *models.Pick) (consensus.Vote, bool) {
	ls, ok := p.LayerScores[config.LayerTactical]
	if !ok || !ls.DataPresent {
		return consensus.Vote{}, false
	}
	sig := consensus.SignalHold
	conf := 50.0
	if ls.Score > 4 {
		sig, conf = consensus.SignalBuy, 55+float64(ls.Score)*2.5
	} else if ls.Score < -4 {
		sig, conf = consensus.SignalSell, 32
	}
	return consensus.Vote{
		ModelName:           "style_matchup",
		Signal:              sig,
		Confidence:          conf,
		MarketSuggested:     p.Market,
		ProbabilityEstimate: p.ModelProb,
		Reasoning:           ls.Reason,
		Weight:              weightStyle,
	}, true
}

// scenarioVote reads the aggregate layer picture as a cheap sub-market
// scenario check.
func scenarioVote(p *models.Pick) consensus.Vote {
	total := p.LayerTotal()
	sig := consensus.SignalHold
	conf := 50.0
	switch {
	case total >= 35:
		sig, conf = consensus.SignalStrongBuy, 70+float64(total-35)/2
	case total >= 15:
		sig, conf = consensus.SignalBuy, 55+float64(total-15)
	case total <= -10:
		sig, conf = consensus.SignalSkip, 25
	}
	if conf > 95 {
		conf = 95
	}
	return consensus.Vote{
		ModelName:           "scenario_analyzer",
		Signal:              sig,
		Confidence:          conf,
		MarketSuggested:     p.Market,
		ProbabilityEstimate: p.ModelProb,
		Reasoning:           fmt.Sprintf("layer total %+d across %d consulted layers", total, p.CoverageCount()),
		Weight:              weightScenario,
	}
}
