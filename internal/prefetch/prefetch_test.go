package prefetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves from maps; a nil map entry is simply absent.
type fakeStore struct {
	intel     map[string]*models.TeamIntelligence
	class     map[string]*models.TeamClass
	momentum  map[string]*models.TeamMomentum
	cells     map[string]*models.TacticalCell
	referees  map[string]*models.RefereeProfile
	leagueRef *models.RefereeProfile
	h2h       *models.HeadToHead
	profiles  map[string]*models.MarketProfile
	traps     []models.MarketTrap
	reality   *models.RealityCheck
	quotes    []models.OddsQuote

	trapErr error
	oddsErr error
	loadErr error
}

func (f *fakeStore) TeamIntelligence(_ context.Context, team string) (*models.TeamIntelligence, error) {
	return f.intel[team], f.loadErr
}
func (f *fakeStore) TeamClass(_ context.Context, team string) (*models.TeamClass, error) {
	return f.class[team], f.loadErr
}
func (f *fakeStore) TeamMomentum(_ context.Context, team string) (*models.TeamMomentum, error) {
	return f.momentum[team], f.loadErr
}
func (f *fakeStore) TacticalCell(_ context.Context, a, b string) (*models.TacticalCell, error) {
	if c, ok := f.cells[a+"|"+b]; ok {
		return c, nil
	}
	return f.cells[b+"|"+a], f.loadErr
}
func (f *fakeStore) RefereeProfile(_ context.Context, name, _ string) (*models.RefereeProfile, error) {
	return f.referees[name], f.loadErr
}
func (f *fakeStore) LeagueAverageReferee(_ context.Context, _ string) (*models.RefereeProfile, error) {
	return f.leagueRef, f.loadErr
}
func (f *fakeStore) HeadToHead(_ context.Context, _, _ string) (*models.HeadToHead, error) {
	return f.h2h, f.loadErr
}
func (f *fakeStore) MarketProfile(_ context.Context, team, location string) (*models.MarketProfile, error) {
	return f.profiles[team+"|"+location], f.loadErr
}
func (f *fakeStore) ActiveTraps(_ context.Context, _ []string) ([]models.MarketTrap, error) {
	if f.trapErr != nil {
		return nil, f.trapErr
	}
	return f.traps, nil
}
func (f *fakeStore) RealityCheck(_ context.Context, _ string) (*models.RealityCheck, error) {
	return f.reality, f.loadErr
}
func (f *fakeStore) OddsHistory(_ context.Context, _ string) ([]models.OddsQuote, error) {
	if f.oddsErr != nil {
		return nil, f.oddsErr
	}
	return f.quotes, nil
}

func newTestPrefetcher(store Store) *Prefetcher {
	res := resolver.NewResolver(nil)
	return NewPrefetcher(store, res, nil, time.Minute, time.Second)
}

func request() models.MatchRequest {
	return models.MatchRequest{
		MatchID:  "m-300",
		HomeTeam: "Arsenal",
		AwayTeam: "Chelsea",
		League:   "premier_league",
		Referee:  "M Oliver",
		Prices:   map[string]float64{models.MarketBTTSYes: 1.80},
	}
}

func TestFetchAssemblesContext(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	store := &fakeStore{
		intel: map[string]*models.TeamIntelligence{
			"Arsenal": {TeamName: "Arsenal", CurrentStyle: "attacking"},
			"Chelsea": {TeamName: "Chelsea", CurrentStyle: "pressing"},
		},
		cells: map[string]*models.TacticalCell{
			"attacking|pressing": {StyleA: "attacking", StyleB: "pressing", SampleSize: 30},
		},
		referees: map[string]*models.RefereeProfile{
			"M Oliver": {RefereeName: "M Oliver", AvgGoalsPerGame: 2.9},
		},
		traps: []models.MarketTrap{{TeamName: "Arsenal", MarketType: models.MarketOver25, IsActive: true}},
		quotes: []models.OddsQuote{
			{MatchID: "m-300", MarketType: models.MarketBTTSYes, Bookmaker: "a", Price: 2.0, CollectedAt: t0},
			{MatchID: "m-300", MarketType: models.MarketBTTSYes, Bookmaker: "a", Price: 1.8, CollectedAt: t0.Add(time.Hour)},
		},
	}

	mc, err := newTestPrefetcher(store).Fetch(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, "Arsenal", mc.HomeTeam)
	require.NotNil(t, mc.Tactical)
	assert.Equal(t, 30, mc.Tactical.SampleSize)
	require.NotNil(t, mc.Referee)
	assert.False(t, mc.Referee.IsLeagueAverage)
	assert.Len(t, mc.Traps, 1)
	require.NotNil(t, mc.SteamFor(models.MarketBTTSYes))
	assert.Nil(t, mc.HomeClass, "absent record stays nil")
	assert.Nil(t, mc.H2H)
	assert.False(t, mc.TrapTableUnreadable)
}

func TestRefereeFallsBackToLeagueAverage(t *testing.T) {
	store := &fakeStore{
		leagueRef: &models.RefereeProfile{RefereeName: "league average", IsLeagueAverage: true},
	}
	mc, err := newTestPrefetcher(store).Fetch(context.Background(), request())
	require.NoError(t, err)
	require.NotNil(t, mc.Referee)
	assert.True(t, mc.Referee.IsLeagueAverage)
}

func TestTrapTableFailureMarksContext(t *testing.T) {
	store := &fakeStore{trapErr: errors.New("relation does not exist")}
	mc, err := newTestPrefetcher(store).Fetch(context.Background(), request())
	require.NoError(t, err, "trap failure degrades, it does not abort")
	assert.True(t, mc.TrapTableUnreadable)
}

func TestOddsFailureLeavesSteamEmpty(t *testing.T) {
	store := &fakeStore{oddsErr: errors.New("timeout")}
	mc, err := newTestPrefetcher(store).Fetch(context.Background(), request())
	require.NoError(t, err)
	assert.Nil(t, mc.Steam)
}

func TestStoreFailureAborts(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("connection refused")}
	_, err := newTestPrefetcher(store).Fetch(context.Background(), request())
	assert.Error(t, err)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("connection refused")}
	p := newTestPrefetcher(store)

	for i := 0; i < 5; i++ {
		_, err := p.Fetch(context.Background(), request())
		require.Error(t, err)
	}

	store.loadErr = nil
	_, err := p.Fetch(context.Background(), request())
	assert.Error(t, err, "breaker is open, the store is not consulted")
}
