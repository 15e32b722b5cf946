package layers

import (
	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/config"
	"github.com/sirupsen/logrus"
)

// EvalFunc is one signal producer. It must return a score clamped to
// ±weight; when its data is absent it returns a zero score with
// DataPresent false so coverage is not inflated.
type EvalFunc func(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore

// Engine runs the fixed set of evaluators in documented order.
type Engine struct {
	cfg   *config.EngineConfig
	evals map[string]EvalFunc
}

func NewEngine(cfg *config.EngineConfig) *Engine {
	return &Engine{
		cfg: cfg,
		evals: map[string]EvalFunc{
			config.LayerTactical:      evalTactical,
			config.LayerMomentum:      evalMomentum,
			config.LayerTeamClass:     evalTeamClass,
			config.LayerXG:            evalXG,
			config.LayerH2H:           evalHeadToHead,
			config.LayerReferee:       evalReferee,
			config.LayerMarketProfile: evalMarketProfile,
			config.LayerSteam:         evalSteam,
			config.LayerRealityCheck:  evalRealityCheck,
		},
	}
}

// Evaluate fills p.LayerScores and p.DataCoverage. Evaluators are pure,
// so order only affects reason/warning ordering, which is why the order
// is pinned.
func (e *Engine) Evaluate(p *models.Pick, ctx *models.MatchContext) {
	for _, name := range config.LayerOrder {
		eval, ok := e.evals[name]
		if !ok {
			continue
		}
		weight := e.cfg.LayerWeights[name]
		ls := eval(weight, p, ctx)
		ls.Score = clamp(ls.Score, weight)
		p.LayerScores[name] = ls
	}
	p.DataCoverage = float64(p.CoverageCount()) / float64(len(config.LayerOrder))

	logrus.WithFields(logrus.Fields{
		"match":    p.MatchID,
		"market":   p.Market,
		"total":    p.LayerTotal(),
		"coverage": p.DataCoverage,
	}).Debug("Layer evaluation complete")
}

func clamp(score, weight int) int {
	if score > weight {
		return weight
	}
	if score < -weight {
		return -weight
	}
	return score
}

func absent(reason string) models.LayerScore {
	return models.LayerScore{Score: 0, Reason: reason, DataPresent: false}
}

// scale maps an alignment in [-1, 1] onto the signed weight cap.
func scale(alignment float64, weight int) int {
	if alignment > 1 {
		alignment = 1
	}
	if alignment < -1 {
		alignment = -1
	}
	return int(alignment * float64(weight))
}
