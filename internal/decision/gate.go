package decision

import (
	"fmt"

	"github.com/matchpulse/betengine/internal/consensus"
	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/config"
	"github.com/sirupsen/logrus"
)

// priceFloor is the absolute minimum quoted price the engine will back;
// below it the payout cannot cover variance even when the edge is real.
const priceFloor = 1.25

// valueEscalationScore is the minimum final score at which an
// exceptional edge can lift a pick into the BET tier despite thin data.
const valueEscalationScore = 20.0

// Gate maps composed scores to actions and sizes stakes.
type Gate struct {
	cfg *config.EngineConfig
}

func NewGate(cfg *config.EngineConfig) *Gate {
	return &Gate{cfg: cfg}
}

// Decide assigns the action tier and the stake. Precedence: trap/critical
// veto, then edge and price floors, then score tiers with coverage and
// consensus requirements.
func (g *Gate) Decide(p *models.Pick, report consensus.Report) {
	p.ConsensusStrength = report.Strength
	p.ConsensusCount = report.PositiveCount
	p.ConsensusScore = report.Score
	p.Divergence = report.Divergence
	p.SweetSpot = g.cfg.SweetSpotFor(p.Market).Contains(p.Price)

	if p.TrapFlag || p.RiskMultiplier == 0 {
		if !p.TrapFlag {
			p.AddWarning("critical risk factor zeroed the pick")
		}
		p.Action = models.ActionVeto
		p.FinalScore = 0
		p.Stake = 0
		return
	}

	minEdge := g.cfg.MinEdgeFor(p.Market)
	if p.Edge < minEdge {
		p.Action = models.ActionSkip
		p.Stake = 0
		p.AddWarning(fmt.Sprintf("edge %.3f below market minimum %.3f", p.Edge, minEdge))
		return
	}
	if p.Price < priceFloor {
		p.Action = models.ActionSkip
		p.Stake = 0
		p.AddWarning(fmt.Sprintf("price %.2f below floor %.2f", p.Price, priceFloor))
		return
	}

	p.LowData = p.DataCoverage < g.cfg.CoverageFloor
	p.Action = g.tier(p, report, minEdge)
	p.Stake = g.Stake(p)

	logrus.WithFields(logrus.Fields{
		"match":  p.MatchID,
		"market": p.Market,
		"score":  p.FinalScore,
		"action": p.Action,
		"stake":  p.Stake,
	}).Debug("Gate decision")
}

func (g *Gate) tier(p *models.Pick, report consensus.Report, minEdge float64) models.Action {
	mediumPlus := consensus.StrengthRank(report.Strength) >= consensus.StrengthRank(consensus.StrengthMedium)

	var action models.Action
	switch {
	case p.FinalScore >= g.cfg.StrongBetScore:
		action = models.ActionStrongBet
		if !mediumPlus || p.LowData {
			action = models.ActionBet
			p.AddWarning("strong tier downgraded: needs consensus and full data")
		}
	case p.FinalScore >= g.cfg.BetScore:
		action = models.ActionBet
	case p.FinalScore >= g.cfg.WatchScore:
		action = models.ActionWatch
	default:
		action = models.ActionSkip
	}

	// exceptional value escalates: a price far off the model with model
	// heads in agreement is worth a position even on a modest score
	if action.Rank() < models.ActionBet.Rank() &&
		p.Edge >= 2*minEdge && mediumPlus && p.FinalScore >= valueEscalationScore {
		action = models.ActionBet
		p.AddWarning("escalated on exceptional edge with consensus backing")
	}

	// outside the sweet spot the engine watches, never commits
	if !p.SweetSpot && action.Rank() > models.ActionWatch.Rank() {
		action = models.ActionWatch
		p.AddWarning(fmt.Sprintf("price %.2f outside sweet spot for %s", p.Price, p.Market))
	}
	return action
}

// Stake computes the fractional Kelly stake, modulated by the final
// score so conviction and sizing move together, and clamped to the cap.
// Non-bet tiers stake zero.
func (g *Gate) Stake(p *models.Pick) float64 {
	if p.Action.Rank() < models.ActionBet.Rank() {
		return 0
	}
	if p.Price <= 1 || p.ModelProb <= 0 {
		return 0
	}
	b := p.Price - 1
	kelly := (p.ModelProb*b - (1 - p.ModelProb)) / b
	if kelly <= 0 {
		return 0
	}
	stake := g.cfg.KellyFraction * kelly * (p.FinalScore / 100)
	if stake > g.cfg.StakeCapPct {
		stake = g.cfg.StakeCapPct
	}
	if stake < 0 {
		stake = 0
	}
	return stake
}
