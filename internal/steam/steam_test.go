package steam

import (
	"testing"
	"time"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quote(market, book string, price float64, at time.Time) models.OddsQuote {
	return models.OddsQuote{
		MatchID: "m-1", MarketType: market, Bookmaker: book,
		Price: price, CollectedAt: at,
	}
}

func TestSharpShorteningDetected(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	books := []string{"bet365", "pinnacle", "williamhill", "unibet"}

	var quotes []models.OddsQuote
	for _, b := range books {
		quotes = append(quotes, quote(models.MarketOver25, b, 2.00, t0))
		quotes = append(quotes, quote(models.MarketOver25, b, 1.85, t0.Add(3*time.Hour)))
	}

	records := Analyze("m-1", quotes)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, models.MovementShortening, rec.MovementDirection)
	assert.InDelta(t, -7.5, rec.MovementPct, 1e-9)
	assert.True(t, rec.IsSharpMove)
	assert.Equal(t, 4, rec.BookmakerCount)
	assert.InDelta(t, 2.00, rec.OpeningOdds, 1e-9)
	assert.InDelta(t, 1.85, rec.CurrentOdds, 1e-9)
}

func TestSlowGrindIsNotSharp(t *testing.T) {
	t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	var quotes []models.OddsQuote
	for _, b := range []string{"bet365", "pinnacle", "williamhill", "unibet"} {
		quotes = append(quotes, quote(models.MarketBTTSYes, b, 2.00, t0))
		quotes = append(quotes, quote(models.MarketBTTSYes, b, 1.85, t0.Add(48*time.Hour)))
	}

	records := Analyze("m-1", quotes)
	require.Len(t, records, 1)
	assert.Equal(t, models.MovementShortening, records[0].MovementDirection)
	assert.False(t, records[0].IsSharpMove, "two-day grind has no sharp signature")
}

func TestSingleBookMoveIsNotSharp(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	quotes := []models.OddsQuote{
		quote(models.MarketHomeWin, "bet365", 2.40, t0),
		quote(models.MarketHomeWin, "bet365", 2.10, t0.Add(time.Hour)),
	}

	records := Analyze("m-1", quotes)
	require.Len(t, records, 1)
	assert.False(t, records[0].IsSharpMove)
	assert.Equal(t, 1, records[0].BookmakerCount)
}

func TestDriftingDirection(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	quotes := []models.OddsQuote{
		quote(models.MarketAwayWin, "bet365", 3.00, t0),
		quote(models.MarketAwayWin, "pinnacle", 3.00, t0),
		quote(models.MarketAwayWin, "bet365", 3.40, t0.Add(2*time.Hour)),
		quote(models.MarketAwayWin, "pinnacle", 3.30, t0.Add(2*time.Hour)),
	}

	records := Analyze("m-1", quotes)
	require.Len(t, records, 1)
	assert.Equal(t, models.MovementDrifting, records[0].MovementDirection)
	assert.Greater(t, records[0].MovementPct, 2.0)
}

func TestStableAndSparseMarkets(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	quotes := []models.OddsQuote{
		quote(models.MarketDraw, "bet365", 3.30, t0),
		quote(models.MarketDraw, "bet365", 3.31, t0.Add(time.Hour)),
		quote(models.MarketUnder25, "bet365", 1.95, t0), // single quote, dropped
		quote(models.MarketOver15, "pinnacle", 0.98, t0), // bad price, dropped
	}

	records := Analyze("m-1", quotes)
	require.Len(t, records, 1)
	assert.Equal(t, models.MarketDraw, records[0].MarketType)
	assert.Equal(t, models.MovementStable, records[0].MovementDirection)
}

func TestOtherMatchQuotesIgnored(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	other := models.OddsQuote{MatchID: "m-2", MarketType: models.MarketDraw, Bookmaker: "b", Price: 3.2, CollectedAt: t0}
	records := Analyze("m-1", []models.OddsQuote{other})
	assert.Empty(t, records)
}

func TestToContextMap(t *testing.T) {
	recs := []models.SharpMoneyRecord{
		{MarketType: models.MarketOver25, MovementPct: -4},
		{MarketType: models.MarketBTTSYes, MovementPct: 1},
	}
	m := ToContextMap(recs)
	require.Len(t, m, 2)
	assert.InDelta(t, -4, m[models.MarketOver25].MovementPct, 1e-12)
}
