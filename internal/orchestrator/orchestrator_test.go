package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/prefetch"
	"github.com/matchpulse/betengine/internal/resolver"
	"github.com/matchpulse/betengine/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCfg() *config.EngineConfig {
	return config.DefaultEngineConfig()
}

// stubStore serves a single fixture's rows from memory.
type stubStore struct {
	intel    map[string]*models.TeamIntelligence
	class    map[string]*models.TeamClass
	momentum map[string]*models.TeamMomentum
	cell     *models.TacticalCell
	referee  *models.RefereeProfile
	h2h      *models.HeadToHead
	profiles map[string]*models.MarketProfile
	traps    []models.MarketTrap
	reality  *models.RealityCheck
	quotes   []models.OddsQuote
}

func (s *stubStore) TeamIntelligence(_ context.Context, team string) (*models.TeamIntelligence, error) {
	return s.intel[team], nil
}
func (s *stubStore) TeamClass(_ context.Context, team string) (*models.TeamClass, error) {
	return s.class[team], nil
}
func (s *stubStore) TeamMomentum(_ context.Context, team string) (*models.TeamMomentum, error) {
	return s.momentum[team], nil
}
func (s *stubStore) TacticalCell(_ context.Context, _, _ string) (*models.TacticalCell, error) {
	return s.cell, nil
}
func (s *stubStore) RefereeProfile(_ context.Context, _, _ string) (*models.RefereeProfile, error) {
	return s.referee, nil
}
func (s *stubStore) LeagueAverageReferee(_ context.Context, _ string) (*models.RefereeProfile, error) {
	return nil, nil
}
func (s *stubStore) HeadToHead(_ context.Context, _, _ string) (*models.HeadToHead, error) {
	return s.h2h, nil
}
func (s *stubStore) MarketProfile(_ context.Context, team, location string) (*models.MarketProfile, error) {
	return s.profiles[team+"|"+location], nil
}
func (s *stubStore) ActiveTraps(_ context.Context, _ []string) ([]models.MarketTrap, error) {
	return s.traps, nil
}
func (s *stubStore) RealityCheck(_ context.Context, _ string) (*models.RealityCheck, error) {
	return s.reality, nil
}
func (s *stubStore) OddsHistory(_ context.Context, _ string) ([]models.OddsQuote, error) {
	return s.quotes, nil
}

// topClashStore models an even, goal-friendly fixture between two
// strong sides with every reference table populated.
func topClashStore() *stubStore {
	t0 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	quotes := []models.OddsQuote{}
	for _, b := range []string{"bet365", "pinnacle", "williamhill", "unibet"} {
		quotes = append(quotes,
			models.OddsQuote{MatchID: "m-1", MarketType: models.MarketBTTSYes, Bookmaker: b, Price: 1.78, CollectedAt: t0},
			models.OddsQuote{MatchID: "m-1", MarketType: models.MarketBTTSYes, Bookmaker: b, Price: 1.65, CollectedAt: t0.Add(2 * time.Hour)},
		)
	}
	return &stubStore{
		intel: map[string]*models.TeamIntelligence{
			"Barcelona": {
				TeamName: "Barcelona", CurrentStyle: "possession",
				HomeOver25Rate: 0.65, HomeBTTSRate: 0.60,
				HomeGoalsScoredAvg: 1.9, HomeGoalsConcAvg: 1.9,
				XGForPerMatch: 1.8, XGAgainstPerMatch: 1.5,
			},
			"Real Madrid": {
				TeamName: "Real Madrid", CurrentStyle: "possession",
				AwayOver25Rate: 0.62, AwayBTTSRate: 0.58,
				AwayGoalsScoredAvg: 1.9, AwayGoalsConcAvg: 1.9,
				XGForPerMatch: 1.6, XGAgainstPerMatch: 1.4,
			},
		},
		class: map[string]*models.TeamClass{
			"Barcelona":   {TeamName: "Barcelona", Tier: "A", PowerIndex: 88, AttackRating: 85, DefenseRating: 65},
			"Real Madrid": {TeamName: "Real Madrid", Tier: "A", PowerIndex: 87, AttackRating: 82, DefenseRating: 68},
		},
		momentum: map[string]*models.TeamMomentum{
			"Barcelona":   {TeamName: "Barcelona", MomentumScore: 74, GoalsScoredLast5: 12, GoalsConcededLast5: 6},
			"Real Madrid": {TeamName: "Real Madrid", MomentumScore: 71, GoalsScoredLast5: 10, GoalsConcededLast5: 7},
		},
		cell: &models.TacticalCell{
			StyleA: "possession", StyleB: "possession",
			BTTSProb: 0.55, Over25Prob: 0.58, Under25Prob: 0.42,
			CleanSheetProb: 0.25, AvgTotalGoals: 2.9, SampleSize: 40,
		},
		referee: &models.RefereeProfile{
			RefereeName: "A Mateu", AvgGoalsPerGame: 2.8, UnderOverTend: "over", HomeBiasFactor: 1.0,
		},
		h2h: &models.HeadToHead{
			TeamA: "Barcelona", TeamB: "Real Madrid", TotalMatches: 8,
			BTTSPct: 0.75, Over25Pct: 0.70, AvgTotalGoals: 3.2,
			Last3BTTS: []string{"yes", "yes", "yes"},
		},
		profiles: map[string]*models.MarketProfile{
			"Barcelona|home": {TeamName: "Barcelona", Location: "home", BestMarket: models.MarketBTTSYes, ConfidenceScore: 80, HistoricalSuccess: 0.72},
		},
		reality: &models.RealityCheck{ConvergenceStatus: "converging", RealityScore: 75},
		quotes:  quotes,
	}
}

func newTestOrchestrator(store prefetch.Store) *Orchestrator {
	pf := prefetch.NewPrefetcher(store, resolver.NewResolver(nil), nil, time.Minute, time.Second)
	cfg := testCfg()
	return New(cfg, 2, 5, pf, nil, nil)
}

func clashRequest(prices map[string]float64) models.MatchRequest {
	return models.MatchRequest{
		MatchID:  "m-1",
		HomeTeam: "Barcelona",
		AwayTeam: "Real Madrid",
		League:   "la_liga",
		Referee:  "A Mateu",
		Prices:   prices,
	}
}

func findPick(t *testing.T, picks []*models.Pick, market string) *models.Pick {
	t.Helper()
	for _, p := range picks {
		if p.Market == market {
			return p
		}
	}
	t.Fatalf("no pick for market %s", market)
	return nil
}

func TestBalancedTopClashBacksBTTS(t *testing.T) {
	o := newTestOrchestrator(topClashStore())
	picks, err := o.AnalyzeMatch(context.Background(), clashRequest(map[string]float64{
		models.MarketBTTSYes: 1.65,
	}))
	require.NoError(t, err)

	p := findPick(t, picks, models.MarketBTTSYes)
	assert.Greater(t, p.Edge, 0.03)
	assert.Contains(t, []models.Action{models.ActionBet, models.ActionStrongBet}, p.Action)
	assert.Greater(t, p.Stake, 0.0)
	assert.Greater(t, p.LayerScores["tactical"].Score, 0)
	assert.InDelta(t, 1.0, p.DataCoverage, 1e-9)
}

func TestTrapVetoEndToEnd(t *testing.T) {
	store := topClashStore()
	store.traps = []models.MarketTrap{{
		TeamName: "Barcelona", MarketType: models.MarketOver25,
		AlertLevel: "TRAP", AlertReason: "public overs money, books holding the line",
		IsActive: true,
	}}
	o := newTestOrchestrator(store)

	picks, err := o.AnalyzeMatch(context.Background(), clashRequest(map[string]float64{
		models.MarketOver25: 1.80,
	}))
	require.NoError(t, err)

	p := findPick(t, picks, models.MarketOver25)
	assert.Equal(t, models.ActionVeto, p.Action)
	assert.Zero(t, p.FinalScore)
	assert.Zero(t, p.Stake)
	assert.Equal(t, "public overs money, books holding the line", p.TrapReason)
	assert.Equal(t, models.PickStateTrapped, p.State)
}

func TestTrapIdempotence(t *testing.T) {
	store := topClashStore()
	store.traps = []models.MarketTrap{{
		TeamName: "Barcelona", MarketType: models.MarketOver25,
		AlertLevel: "TRAP", IsActive: true,
	}}
	o := newTestOrchestrator(store)
	req := clashRequest(map[string]float64{models.MarketOver25: 1.80})

	first, err := o.AnalyzeMatch(context.Background(), req)
	require.NoError(t, err)
	second, err := o.AnalyzeMatch(context.Background(), req)
	require.NoError(t, err)

	a, b := first[0], second[0]
	assert.Equal(t, a.Action, b.Action)
	assert.Equal(t, a.FinalScore, b.FinalScore)
	assert.Equal(t, a.Stake, b.Stake)
}

func TestLowDataFallback(t *testing.T) {
	store := &stubStore{
		momentum: map[string]*models.TeamMomentum{
			"Barcelona":   {TeamName: "Barcelona", MomentumScore: 60, GoalsScoredLast5: 8, GoalsConcededLast5: 6},
			"Real Madrid": {TeamName: "Real Madrid", MomentumScore: 55, GoalsScoredLast5: 7, GoalsConcededLast5: 7},
		},
	}
	o := newTestOrchestrator(store)

	picks, err := o.AnalyzeMatch(context.Background(), clashRequest(map[string]float64{
		models.MarketOver25: 1.90,
	}))
	require.NoError(t, err)

	p := findPick(t, picks, models.MarketOver25)
	assert.LessOrEqual(t, p.DataCoverage, 0.2)
	if p.Action.Rank() >= models.ActionBet.Rank() {
		assert.True(t, p.LowData, "committed tiers must carry the low-data label")
	}
	assert.NotEqual(t, models.ActionStrongBet, p.Action)
}

func TestSteamConfirmationLiftsScoreAndStake(t *testing.T) {
	quiet := topClashStore()
	quiet.quotes = nil
	quietO := newTestOrchestrator(quiet)

	steamy := topClashStore()
	steamyO := newTestOrchestrator(steamy)

	prices := map[string]float64{models.MarketBTTSYes: 1.65}
	quietPicks, err := quietO.AnalyzeMatch(context.Background(), clashRequest(prices))
	require.NoError(t, err)
	steamyPicks, err := steamyO.AnalyzeMatch(context.Background(), clashRequest(prices))
	require.NoError(t, err)

	q := findPick(t, quietPicks, models.MarketBTTSYes)
	s := findPick(t, steamyPicks, models.MarketBTTSYes)

	assert.InDelta(t, 1.0, q.TrendMultiplier, 1e-12)
	assert.InDelta(t, 1.05, s.TrendMultiplier, 1e-12)
	assert.Greater(t, s.FinalScore, q.FinalScore)
	assert.Greater(t, s.Stake, q.Stake)
	assert.Greater(t, q.Stake, 0.0)
}

func TestOddsPenaltyCapsLongPrice(t *testing.T) {
	o := newTestOrchestrator(topClashStore())
	picks, err := o.AnalyzeMatch(context.Background(), clashRequest(map[string]float64{
		models.MarketHomeWin: 6.5,
	}))
	require.NoError(t, err)

	p := findPick(t, picks, models.MarketHomeWin)
	assert.LessOrEqual(t, p.Action.Rank(), models.ActionWatch.Rank())
	assert.Zero(t, p.Stake)
	assert.False(t, p.SweetSpot)
}

func TestUnknownMarketSkips(t *testing.T) {
	o := newTestOrchestrator(topClashStore())
	picks, err := o.AnalyzeMatch(context.Background(), clashRequest(map[string]float64{
		"first_goalscorer": 4.5,
	}))
	require.NoError(t, err)

	p := findPick(t, picks, "first_goalscorer")
	assert.Equal(t, models.ActionSkip, p.Action)
	require.NotEmpty(t, p.Warnings)
}

func TestAnalyzeBatchRanksAndSurvivesFailures(t *testing.T) {
	o := newTestOrchestrator(topClashStore())
	res, err := o.Analyze(context.Background(), models.AnalyzeRequest{
		Matches: []models.MatchRequest{
			clashRequest(map[string]float64{
				models.MarketBTTSYes: 1.65,
				models.MarketOver25:  1.85,
				models.MarketHomeWin: 6.5,
			}),
		},
		TopK: 2,
	})
	require.NoError(t, err)

	assert.Len(t, res.AllPicks, 3)
	assert.LessOrEqual(t, len(res.TopPicks), 2)
	for _, p := range res.TopPicks {
		assert.Greater(t, p.Action.Rank(), models.ActionSkip.Rank())
	}
	// ranked output prefers sweet-spot prices over the 6.5 long shot
	if len(res.TopPicks) > 0 {
		assert.True(t, res.TopPicks[0].SweetSpot)
	}
}

func TestAnalyzeCarriesScorelineForecast(t *testing.T) {
	o := newTestOrchestrator(topClashStore())
	res, err := o.Analyze(context.Background(), models.AnalyzeRequest{
		Matches: []models.MatchRequest{
			clashRequest(map[string]float64{models.MarketBTTSYes: 1.65}),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Forecasts, 1)
	f := res.Forecasts[0]
	assert.Equal(t, "m-1", f.MatchID)
	assert.Equal(t, "Barcelona", f.HomeTeam)
	assert.Equal(t, "Real Madrid", f.AwayTeam)
	assert.Greater(t, f.LambdaHome, 0.0)

	require.Len(t, f.TopScores, testCfg().CorrectScoreN)
	for i := 1; i < len(f.TopScores); i++ {
		assert.GreaterOrEqual(t, f.TopScores[i-1].Probability, f.TopScores[i].Probability,
			"scorelines ranked most likely first")
	}
}

func TestRankOrdering(t *testing.T) {
	mk := func(market string, sweet bool, cov, score float64, action models.Action) *models.Pick {
		p := models.NewPick("m", "h", "a", "l", market, 1.8)
		p.SweetSpot = sweet
		p.DataCoverage = cov
		p.FinalScore = score
		p.Action = action
		return p
	}
	picks := []*models.Pick{
		mk("a", false, 0.9, 90, models.ActionBet),
		mk("b", true, 0.5, 50, models.ActionBet),
		mk("c", true, 0.9, 40, models.ActionWatch),
		mk("d", true, 0.9, 80, models.ActionStrongBet),
		mk("e", true, 0.2, 99, models.ActionSkip), // filtered out
	}

	ranked := Rank(picks, 10)
	require.Len(t, ranked, 4)
	assert.Equal(t, "d", ranked[0].Market)
	assert.Equal(t, "c", ranked[1].Market)
	assert.Equal(t, "b", ranked[2].Market)
	assert.Equal(t, "a", ranked[3].Market)
}

func TestDeriveLambdasFallback(t *testing.T) {
	lh, la := DeriveLambdas(&models.MatchContext{})
	assert.InDelta(t, fallbackHomeLambda, lh, 1e-12)
	assert.InDelta(t, fallbackAwayLambda, la, 1e-12)
}

func TestDeriveLambdasBlendsXG(t *testing.T) {
	mc := &models.MatchContext{
		HomeIntel: &models.TeamIntelligence{
			HomeGoalsScoredAvg: 2.0, HomeGoalsConcAvg: 1.0,
			XGForPerMatch: 1.8, XGAgainstPerMatch: 1.2,
		},
		AwayIntel: &models.TeamIntelligence{
			AwayGoalsScoredAvg: 1.2, AwayGoalsConcAvg: 1.4,
			XGForPerMatch: 1.3, XGAgainstPerMatch: 1.6,
		},
	}
	lh, la := DeriveLambdas(mc)
	// rates: home (2.0+1.4)/2 = 1.7, xg (1.8+1.6)/2 = 1.7
	assert.InDelta(t, 1.7, lh, 1e-9)
	// rates: away (1.2+1.0)/2 = 1.1, xg (1.3+1.2)/2 = 1.25 -> 0.6*1.25+0.4*1.1
	assert.InDelta(t, 1.19, la, 1e-9)
}
