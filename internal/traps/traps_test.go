package traps

import (
	"testing"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trapContext() *models.MatchContext {
	return &models.MatchContext{
		MatchID:  "m-200",
		HomeTeam: "Valencia",
		AwayTeam: "Getafe",
		Traps: []models.MarketTrap{
			{
				TeamName: "Valencia", MarketType: models.MarketOver25,
				AlertLevel: "TRAP", AlertReason: "public money inflating overs",
				AlternativeMarket: models.MarketUnder35, IsActive: true,
			},
			{
				TeamName: "Valencia", MarketType: models.MarketBTTSYes,
				AlertLevel: "DANGER", IsActive: false,
			},
		},
	}
}

func TestTrapVetoesPick(t *testing.T) {
	ctx := trapContext()
	p := models.NewPick("m-200", "Valencia", "Getafe", "la_liga", models.MarketOver25, 1.85)
	p.FinalScore = 62
	p.Stake = 0.02

	v, err := Check(p, ctx)
	require.NoError(t, err)
	require.True(t, v.Trapped)
	assert.Equal(t, "public money inflating overs", v.Reason)
	assert.Equal(t, models.MarketUnder35, v.AlternativeMarket)

	Apply(p, v)
	assert.True(t, p.TrapFlag)
	assert.Equal(t, models.ActionVeto, p.Action)
	assert.Equal(t, models.PickStateTrapped, p.State)
	assert.Zero(t, p.FinalScore)
	assert.Zero(t, p.Stake)
}

func TestInactiveTrapIgnored(t *testing.T) {
	ctx := trapContext()
	p := models.NewPick("m-200", "Valencia", "Getafe", "la_liga", models.MarketBTTSYes, 1.80)

	v, err := Check(p, ctx)
	require.NoError(t, err)
	assert.False(t, v.Trapped)
}

func TestTrapOnOtherTeamIgnored(t *testing.T) {
	ctx := trapContext()
	ctx.Traps[0].TeamName = "Sevilla" // not in this fixture
	p := models.NewPick("m-200", "Valencia", "Getafe", "la_liga", models.MarketOver25, 1.85)

	v, err := Check(p, ctx)
	require.NoError(t, err)
	assert.False(t, v.Trapped)
}

func TestUnreadableTableFailsClosed(t *testing.T) {
	ctx := trapContext()
	ctx.TrapTableUnreadable = true
	p := models.NewPick("m-200", "Valencia", "Getafe", "la_liga", models.MarketOver25, 1.85)

	_, err := Check(p, ctx)
	assert.ErrorIs(t, err, utils.ErrTrapTableUnread)
}

func TestApplyNoopOnCleanVerdict(t *testing.T) {
	p := models.NewPick("m-200", "Valencia", "Getafe", "la_liga", models.MarketOver25, 1.85)
	p.FinalScore = 55
	Apply(p, Verdict{})
	assert.False(t, p.TrapFlag)
	assert.EqualValues(t, 55, p.FinalScore)
}
