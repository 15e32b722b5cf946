package orchestrator

import "github.com/matchpulse/betengine/internal/models"

// League-wide fallback expectancies when a side has no profile at all.
const (
	fallbackHomeLambda = 1.40
	fallbackAwayLambda = 1.10

	lambdaFloor = 0.20
	lambdaCeil  = 4.50
)

// xgBlend is the weight on the xG view when it is populated; rate-based
// averages carry the rest.
const xgBlend = 0.60

// DeriveLambdas turns the two team profiles into goal expectancies. Each
// side's rate is the average of its scoring rate and the opponent's
// concession rate, blended toward the xG view when the ETL filled it.
func DeriveLambdas(mc *models.MatchContext) (lambdaHome, lambdaAway float64) {
	home, away := mc.HomeIntel, mc.AwayIntel
	if home == nil || away == nil {
		return fallbackHomeLambda, fallbackAwayLambda
	}

	lambdaHome = (home.HomeGoalsScoredAvg + away.AwayGoalsConcAvg) / 2
	lambdaAway = (away.AwayGoalsScoredAvg + home.HomeGoalsConcAvg) / 2

	if home.XGForPerMatch > 0 && away.XGAgainstPerMatch > 0 {
		xg := (home.XGForPerMatch + away.XGAgainstPerMatch) / 2
		lambdaHome = xgBlend*xg + (1-xgBlend)*lambdaHome
	}
	if away.XGForPerMatch > 0 && home.XGAgainstPerMatch > 0 {
		xg := (away.XGForPerMatch + home.XGAgainstPerMatch) / 2
		lambdaAway = xgBlend*xg + (1-xgBlend)*lambdaAway
	}

	return clampLambda(lambdaHome), clampLambda(lambdaAway)
}

func clampLambda(l float64) float64 {
	if l < lambdaFloor {
		return lambdaFloor
	}
	if l > lambdaCeil {
		return lambdaCeil
	}
	return l
}

// styleDeltas resolves the first-half share adjustments for both sides.
func styleDeltas(mc *models.MatchContext, table map[string]float64) (float64, float64) {
	dh, da := 0.0, 0.0
	if mc.HomeIntel != nil {
		dh = table[mc.HomeIntel.CurrentStyle]
	}
	if mc.AwayIntel != nil {
		da = table[mc.AwayIntel.CurrentStyle]
	}
	return dh, da
}
