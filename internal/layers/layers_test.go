package layers

import (
	"testing"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngineConfig() *config.EngineConfig {
	cfg := config.DefaultEngineConfig()
	return cfg
}

func richContext() *models.MatchContext {
	return &models.MatchContext{
		MatchID:  "m-100",
		League:   "premier_league",
		HomeTeam: "Arsenal",
		AwayTeam: "Chelsea",
		HomeIntel: &models.TeamIntelligence{
			TeamName: "Arsenal", CurrentStyle: "attacking",
			HomeOver25Rate: 0.70, HomeBTTSRate: 0.65,
			HomeGoalsScoredAvg: 2.1, HomeGoalsConcAvg: 1.0,
			XGForPerMatch: 1.9, XGAgainstPerMatch: 1.1, OverperformanceGoals: 0.1,
		},
		AwayIntel: &models.TeamIntelligence{
			TeamName: "Chelsea", CurrentStyle: "pressing",
			AwayOver25Rate: 0.60, AwayBTTSRate: 0.60,
			AwayGoalsScoredAvg: 1.5, AwayGoalsConcAvg: 1.3,
			XGForPerMatch: 1.4, XGAgainstPerMatch: 1.3, OverperformanceGoals: 0.0,
		},
		HomeClass: &models.TeamClass{TeamName: "Arsenal", Tier: "A", PowerIndex: 85, AttackRating: 86, DefenseRating: 78},
		AwayClass: &models.TeamClass{TeamName: "Chelsea", Tier: "B", PowerIndex: 74, AttackRating: 75, DefenseRating: 70},
		HomeMomentum: &models.TeamMomentum{
			TeamName: "Arsenal", MomentumScore: 72, FormString: "WWDWW",
			GoalsScoredLast5: 11, GoalsConcededLast5: 4,
		},
		AwayMomentum: &models.TeamMomentum{
			TeamName: "Chelsea", MomentumScore: 55, FormString: "WLDWL",
			GoalsScoredLast5: 8, GoalsConcededLast5: 7,
		},
		Tactical: &models.TacticalCell{
			StyleA: "attacking", StyleB: "pressing",
			BTTSProb: 0.62, Over25Prob: 0.64, Under25Prob: 0.36,
			CleanSheetProb: 0.22, AvgTotalGoals: 3.1, SampleSize: 48,
		},
		Referee: &models.RefereeProfile{
			RefereeName: "M Oliver", AvgGoalsPerGame: 2.9, UnderOverTend: "over", HomeBiasFactor: 1.02,
		},
		H2H: &models.HeadToHead{
			TeamA: "Arsenal", TeamB: "Chelsea", TotalMatches: 8,
			BTTSPct: 0.70, Over25Pct: 0.65, AvgTotalGoals: 3.0,
			Last3BTTS: []string{"yes", "yes", "yes"},
		},
		HomeProfile: &models.MarketProfile{
			TeamName: "Arsenal", Location: "home", BestMarket: models.MarketBTTSYes,
			ConfidenceScore: 78, HistoricalSuccess: 0.71,
		},
		RealityCheck: &models.RealityCheck{ConvergenceStatus: "converging", RealityScore: 70},
		Steam: map[string]*models.SharpMoneyRecord{
			models.MarketBTTSYes: {
				MarketType: models.MarketBTTSYes, MovementPct: -6.0,
				MovementDirection: models.MovementShortening, IsSharpMove: true, BookmakerCount: 9,
			},
		},
	}
}

func TestEvaluateFullContext(t *testing.T) {
	eng := NewEngine(testEngineConfig())
	ctx := richContext()
	p := models.NewPick("m-100", "Arsenal", "Chelsea", "premier_league", models.MarketBTTSYes, 1.80)

	eng.Evaluate(p, ctx)

	require.Len(t, p.LayerScores, len(config.LayerOrder))
	assert.InDelta(t, 1.0, p.DataCoverage, 1e-9, "every layer had data")

	// goal-friendly context: the heavy layers back BTTS-Yes
	assert.Greater(t, p.LayerScores[config.LayerTactical].Score, 0)
	assert.Greater(t, p.LayerScores[config.LayerH2H].Score, 0)
	assert.Greater(t, p.LayerScores[config.LayerSteam].Score, 0)
	assert.Greater(t, p.LayerScores[config.LayerMarketProfile].Score, 0)
	assert.Greater(t, p.LayerTotal(), 20)
}

func TestEvaluateClampsToWeights(t *testing.T) {
	cfg := testEngineConfig()
	eng := NewEngine(cfg)
	ctx := richContext()
	p := models.NewPick("m-100", "Arsenal", "Chelsea", "premier_league", models.MarketBTTSYes, 1.80)

	eng.Evaluate(p, ctx)
	for name, ls := range p.LayerScores {
		w := cfg.LayerWeights[name]
		assert.LessOrEqual(t, ls.Score, w, name)
		assert.GreaterOrEqual(t, ls.Score, -w, name)
	}
}

func TestAbsentDataDoesNotInflateCoverage(t *testing.T) {
	eng := NewEngine(testEngineConfig())
	ctx := &models.MatchContext{
		MatchID: "m-101", HomeTeam: "A", AwayTeam: "B",
		HomeIntel: richContext().HomeIntel,
		AwayIntel: richContext().AwayIntel,
	}
	p := models.NewPick("m-101", "A", "B", "premier_league", models.MarketOver25, 1.90)

	eng.Evaluate(p, ctx)

	// tactical falls back to direct rates; xG reads intel; the rest abstain
	assert.True(t, p.LayerScores[config.LayerTactical].DataPresent)
	assert.True(t, p.LayerScores[config.LayerXG].DataPresent)
	assert.False(t, p.LayerScores[config.LayerMomentum].DataPresent)
	assert.Equal(t, 0, p.LayerScores[config.LayerMomentum].Score)
	assert.False(t, p.LayerScores[config.LayerSteam].DataPresent)
	assert.InDelta(t, 2.0/9.0, p.DataCoverage, 1e-9)
}

func TestThinTacticalCellFallsBack(t *testing.T) {
	ctx := richContext()
	ctx.Tactical.SampleSize = 5 // below threshold
	p := models.NewPick("m-100", "Arsenal", "Chelsea", "premier_league", models.MarketOver25, 1.85)

	ls := evalTactical(15, p, ctx)
	assert.True(t, ls.DataPresent)
	assert.Contains(t, ls.Reason, "fallback")
}

func TestTacticalNeutralCellIsLastResort(t *testing.T) {
	ctx := &models.MatchContext{Tactical: models.NeutralTacticalCell()}
	p := models.NewPick("m-102", "A", "B", "premier_league", models.MarketBTTSYes, 1.80)

	ls := evalTactical(15, p, ctx)
	assert.True(t, ls.DataPresent, "substituted cell still counts as consulted")
	assert.Zero(t, ls.Score, "a neutral prior carries no lean")
	assert.Contains(t, ls.Reason, "neutral")
}

func TestTacticalThinCellDampedWithoutTeamRates(t *testing.T) {
	thin := &models.TacticalCell{
		StyleA: "attacking", StyleB: "attacking",
		BTTSProb: 0.90, Over25Prob: 0.85, Under25Prob: 0.15,
		CleanSheetProb: 0.10, AvgTotalGoals: 3.4, SampleSize: 5,
	}
	full := *thin
	full.SampleSize = models.MinTacticalSample
	p := models.NewPick("m-103", "A", "B", "premier_league", models.MarketBTTSYes, 1.80)

	damped := evalTactical(15, p, &models.MatchContext{Tactical: thin})
	sampled := evalTactical(15, p, &models.MatchContext{Tactical: &full})
	assert.True(t, damped.DataPresent)
	assert.Greater(t, damped.Score, 0)
	assert.Less(t, damped.Score, sampled.Score, "thin sample carries less conviction")
}

func TestMarketProfileAvoidListPenalizes(t *testing.T) {
	ctx := richContext()
	ctx.HomeProfile.AvoidMarkets = []string{models.MarketUnder25}
	p := models.NewPick("m-100", "Arsenal", "Chelsea", "premier_league", models.MarketUnder25, 2.10)

	ls := evalMarketProfile(8, p, ctx)
	assert.True(t, ls.DataPresent)
	assert.Equal(t, -8, ls.Score)
}

func TestSteamDriftCountsAgainst(t *testing.T) {
	ctx := richContext()
	ctx.Steam[models.MarketBTTSYes] = &models.SharpMoneyRecord{
		MarketType: models.MarketBTTSYes, MovementPct: 5.0,
		MovementDirection: models.MovementDrifting, IsSharpMove: false, BookmakerCount: 7,
	}
	p := models.NewPick("m-100", "Arsenal", "Chelsea", "premier_league", models.MarketBTTSYes, 1.95)

	ls := evalSteam(10, p, ctx)
	assert.Negative(t, ls.Score)
}

func TestMomentumAvailabilityDrag(t *testing.T) {
	ctx := richContext()
	base := evalMomentum(12, models.NewPick("m", "A", "C", "l", models.MarketOver25, 1.9), ctx)

	ctx.HomeMomentum.KeyPlayerAbsent = true
	ctx.HomeMomentum.CupFatigue = true
	dragged := evalMomentum(12, models.NewPick("m", "A", "C", "l", models.MarketOver25, 1.9), ctx)

	assert.Less(t, dragged.Score, base.Score)
}
