package layers

import (
	"fmt"

	"github.com/matchpulse/betengine/internal/models"
)

// evalTactical scores the style-pair cell against the picked market. A
// thin cell falls back to direct team rates, then to the cell itself
// as a damped prior; with none of those, the layer abstains.
func evalTactical(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	cell := ctx.Tactical
	if cell != nil && cell.SampleSize >= models.MinTacticalSample {
		return tacticalFromCell(weight, p.Market, cell)
	}
	if ctx.HomeIntel != nil && ctx.AwayIntel != nil {
		return tacticalFromRates(weight, p.Market, ctx.HomeIntel, ctx.AwayIntel)
	}
	if cell != nil {
		// thin or substituted neutral cell, the last prior before abstaining
		return tacticalFromCell(weight, p.Market, cell)
	}
	return absent("no tactical cell and no direct team rates")
}

func tacticalFromCell(weight int, market string, cell *models.TacticalCell) models.LayerScore {
	var prob float64
	var label string
	switch {
	case market == models.MarketBTTSYes || market == models.MarketHTBTTSYes || market == models.MarketBTTSBothHalves:
		prob, label = cell.BTTSProb, "BTTS"
	case market == models.MarketBTTSNo:
		prob, label = 1-cell.BTTSProb, "no-BTTS"
	case models.IsOverMarket(market):
		prob, label = cell.Over25Prob, "over"
	case models.IsUnderMarket(market):
		prob, label = cell.Under25Prob, "under"
		if market == models.MarketHomeWinToNil || market == models.MarketAwayWinToNil {
			prob, label = cell.CleanSheetProb/0.60, "clean sheet"
		}
	default:
		// neutral markets lean on the cell's expected goal volume
		prob, label = (cell.AvgTotalGoals-1.6)/2.0, "goal volume"
	}
	alignment := (prob - 0.5) / 0.5
	if cell.SampleSize < models.MinTacticalSample {
		// a thin cell is a prior, not evidence
		alignment *= 0.4
	}
	return models.LayerScore{
		Score:       scale(alignment, weight),
		Reason:      fmt.Sprintf("tactical cell %s/%s: %s rate %.0f%% over %d matches", cell.StyleA, cell.StyleB, label, prob*100, cell.SampleSize),
		DataPresent: true,
	}
}

func tacticalFromRates(weight int, market string, home, away *models.TeamIntelligence) models.LayerScore {
	overRate := (home.HomeOver25Rate + away.AwayOver25Rate) / 2
	bttsRate := (home.HomeBTTSRate + away.AwayBTTSRate) / 2

	var alignment float64
	var label string
	switch {
	case market == models.MarketBTTSYes || market == models.MarketHTBTTSYes || market == models.MarketBTTSBothHalves:
		alignment, label = (bttsRate-0.5)/0.5, "direct BTTS rates"
	case market == models.MarketBTTSNo:
		alignment, label = (0.5-bttsRate)/0.5, "direct BTTS rates"
	case models.IsOverMarket(market):
		alignment, label = (overRate-0.5)/0.5, "direct over rates"
	case models.IsUnderMarket(market):
		alignment, label = (0.5-overRate)/0.5, "direct under rates"
	default:
		goals := home.HomeGoalsScoredAvg + away.AwayGoalsScoredAvg
		alignment, label = (goals-2.6)/2.6, "direct scoring averages"
	}
	// fallback carries less conviction than a sampled cell
	return models.LayerScore{
		Score:       scale(alignment*0.7, weight),
		Reason:      fmt.Sprintf("tactical fallback, %s", label),
		DataPresent: true,
	}
}
