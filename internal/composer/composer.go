package composer

import (
	"math"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/config"
	"gonum.org/v1/gonum/stat"
)

// Composer folds layer output and the multiplier family into the final
// score. Multipliers are multiplicative on purpose: the ML head and the
// risk model amplify or damp the evidence instead of adding to it, so a
// strong classifier cannot rescue a pick with no layer support.
type Composer struct {
	cfg *config.EngineConfig
}

func New(cfg *config.EngineConfig) *Composer {
	return &Composer{cfg: cfg}
}

const baseOffset = 10.0

// Compose fills BaseScore, the multiplier fields, and FinalScore.
// mlConfidence is the classifier output in [0, 1].
func (c *Composer) Compose(p *models.Pick, ctx *models.MatchContext, mlConfidence float64) {
	base := baseOffset + float64(p.LayerTotal())
	if base < 0 {
		base = 0
	}

	p.VarianceFactor = c.varianceFactor(p)
	p.RiskMultiplier = c.RiskMultiplier(p, ctx)
	p.TrendMultiplier = c.TrendMultiplier(p, ctx)
	p.MLMultiplier = c.cfg.MLMultiplier(mlConfidence)
	p.MLBonus = c.mlBonus(mlConfidence)

	p.BaseScore = base * p.VarianceFactor

	score := math.Min(99, p.BaseScore*p.RiskMultiplier*p.TrendMultiplier*p.MLMultiplier) + p.MLBonus
	if score < 0 {
		score = 0
	}
	if score > 99 {
		score = 99
	}
	p.FinalScore = score
	p.State = models.PickStateEvaluated
}

// varianceFactor penalizes picks whose layers disagree. The factor
// stays in [0.7, 1] and kicks in once the coefficient of variation of
// the present layers' scores clears the threshold.
func (c *Composer) varianceFactor(p *models.Pick) float64 {
	var scores []float64
	for _, ls := range p.LayerScores {
		if ls.DataPresent {
			scores = append(scores, float64(ls.Score))
		}
	}
	if len(scores) < 2 {
		return 1
	}
	mean := stat.Mean(scores, nil)
	sd := math.Sqrt(stat.Variance(scores, nil))
	if math.Abs(mean) < 1 {
		// near-zero mean means no net signal either way; the gate will
		// handle that, no extra penalty here
		return 1
	}
	cov := sd / math.Abs(mean)
	if cov <= c.cfg.VariancePenaltyCoV {
		return 1
	}
	excess := math.Min(1, (cov-c.cfg.VariancePenaltyCoV)/3)
	return 1 - 0.3*excess
}

// Risk multiplier values, selected by the most severe matching condition.
const (
	riskBlacklist      = 0.0
	riskWeather        = 0.50
	riskBothStarsOut   = 0.55
	riskStarOutFatigue = 0.60
	riskStarOut        = 0.70
	riskCupFatigue     = 0.75
	riskBothCongested  = 0.85
	riskPoorData       = 0.88
	riskCongested      = 0.92
	riskCoachPressure  = 0.93
	riskNeutral        = 1.00
	riskHighStakes     = 1.03
	riskHighStakesForm = 1.05
)

// RiskMultiplier walks the severity ladder top-down and returns the
// first match. Zero is the critical rung: the gate turns it into VETO.
func (c *Composer) RiskMultiplier(p *models.Pick, ctx *models.MatchContext) float64 {
	home, away := ctx.HomeMomentum, ctx.AwayMomentum

	starOut := func(m *models.TeamMomentum) bool { return m != nil && m.KeyPlayerAbsent }
	fatigued := func(m *models.TeamMomentum) bool { return m != nil && m.CupFatigue }
	congested := func(m *models.TeamMomentum) bool { return m != nil && m.CongestedSchedule }
	pressured := func(m *models.TeamMomentum) bool { return m != nil && m.CoachUnderPressure }

	switch {
	case ctx.Blacklisted:
		return riskBlacklist
	case ctx.ExtremeWeather:
		return riskWeather
	case starOut(home) && starOut(away):
		return riskBothStarsOut
	case (starOut(home) && fatigued(home)) || (starOut(away) && fatigued(away)):
		return riskStarOutFatigue
	case starOut(home) || starOut(away):
		return riskStarOut
	case fatigued(home) || fatigued(away):
		return riskCupFatigue
	case congested(home) && congested(away):
		return riskBothCongested
	case p.DataCoverage < c.cfg.CoverageFloor:
		return riskPoorData
	case congested(home) || congested(away):
		return riskCongested
	case pressured(home) || pressured(away):
		return riskCoachPressure
	case ctx.HighStakes && excellentForm(home) && excellentForm(away):
		return riskHighStakesForm
	case ctx.HighStakes:
		return riskHighStakes
	default:
		return riskNeutral
	}
}

func excellentForm(m *models.TeamMomentum) bool {
	return m != nil && m.MomentumScore >= 70
}

// TrendMultiplier reads the dominant steam signal for the picked
// market, bounded to [0.85, 1.05].
func (c *Composer) TrendMultiplier(p *models.Pick, ctx *models.MatchContext) float64 {
	rec := ctx.SteamFor(p.Market)
	if rec == nil {
		return 1.0
	}
	switch rec.MovementDirection {
	case models.MovementShortening:
		if rec.IsSharpMove {
			return 1.05
		}
		k := 1.0 + math.Min(0.04, math.Abs(rec.MovementPct)/200)
		return k
	case models.MovementDrifting:
		k := 1.0 - math.Min(0.15, math.Abs(rec.MovementPct)/60)
		return k
	default:
		return 1.0
	}
}

// mlBonus is the small signed nudge, clamped by its own cap.
func (c *Composer) mlBonus(confidence float64) float64 {
	bonus := (confidence - 0.5) * 20
	cap := c.cfg.MLBonusCap
	if bonus > cap {
		return cap
	}
	if bonus < -cap {
		return -cap
	}
	return bonus
}
