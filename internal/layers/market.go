package layers

import (
	"fmt"

	"github.com/matchpulse/betengine/internal/models"
)

// evalReferee scores the official's goal environment and home bias. The
// prefetcher substitutes a league-average profile when the individual
// record is missing; that substitute still counts as data, just thinner.
func evalReferee(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	ref := ctx.Referee
	if ref == nil {
		return absent("no referee profile and no league average")
	}

	var alignment float64
	switch {
	case models.IsOverMarket(p.Market):
		alignment = (ref.AvgGoalsPerGame - 2.6) / 1.0
		if ref.UnderOverTend == "over" {
			alignment += 0.3
		} else if ref.UnderOverTend == "under" {
			alignment -= 0.3
		}
	case models.IsUnderMarket(p.Market):
		alignment = (2.6 - ref.AvgGoalsPerGame) / 1.0
		if ref.UnderOverTend == "under" {
			alignment += 0.3
		} else if ref.UnderOverTend == "over" {
			alignment -= 0.3
		}
	case p.Market == models.MarketHomeWin || p.Market == models.MarketDC1X || p.Market == models.MarketDraw:
		if ref.HomeBiasFactor > 1.05 {
			alignment = (ref.HomeBiasFactor - 1.0) * 4
		}
	case p.Market == models.MarketAwayWin || p.Market == models.MarketDCX2:
		if ref.HomeBiasFactor > 1.05 {
			alignment = -(ref.HomeBiasFactor - 1.0) * 4
		}
	}

	if ref.IsLeagueAverage {
		alignment *= 0.5
	}
	return models.LayerScore{
		Score:       scale(alignment, weight),
		Reason:      fmt.Sprintf("%s: %.2f goals/game, tendency %s, home bias %.2f", ref.RefereeName, ref.AvgGoalsPerGame, ref.UnderOverTend, ref.HomeBiasFactor),
		DataPresent: true,
	}
}

// evalMarketProfile rewards a pick that lands on a team's historically
// best market and penalizes one on an avoid list.
func evalMarketProfile(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	if ctx.HomeProfile == nil && ctx.AwayProfile == nil {
		return absent("no market profiles for either side")
	}

	alignment := 0.0
	var reasons []string
	for _, prof := range []*models.MarketProfile{ctx.HomeProfile, ctx.AwayProfile} {
		if prof == nil {
			continue
		}
		if prof.BestMarket == p.Market {
			alignment += prof.ConfidenceScore / 100
			reasons = append(reasons, fmt.Sprintf("%s best market (%.0f%% success)", prof.TeamName, prof.HistoricalSuccess*100))
		}
		for _, avoid := range prof.AvoidMarkets {
			if avoid == p.Market {
				alignment -= 1.0
				reasons = append(reasons, fmt.Sprintf("%s avoid list", prof.TeamName))
			}
		}
	}

	reason := "no profile signal for this market"
	if len(reasons) > 0 {
		reason = reasons[0]
		for _, r := range reasons[1:] {
			reason += "; " + r
		}
	}
	return models.LayerScore{Score: scale(alignment, weight), Reason: reason, DataPresent: true}
}

// evalSteam reads price movement for the picked market. Shortening with
// a sharp signature backs the pick; drifting counts against it.
func evalSteam(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	rec := ctx.SteamFor(p.Market)
	if rec == nil {
		return absent("no steam record for this market")
	}

	magnitude := -rec.MovementPct / 10 // -10% shortening -> 1.0
	if magnitude > 1 {
		magnitude = 1
	}
	if magnitude < -1 {
		magnitude = -1
	}

	alignment := magnitude
	if rec.IsSharpMove && magnitude > 0 {
		alignment = magnitude*0.6 + 0.4
	}
	if rec.MovementDirection == models.MovementDrifting && alignment > -0.2 {
		alignment = -0.4 // drift against the pick trumps a stale magnitude
	}

	return models.LayerScore{
		Score:       scale(alignment, weight),
		Reason:      fmt.Sprintf("moved %.1f%% (%s), sharp=%v across %d books", rec.MovementPct, rec.MovementDirection, rec.IsSharpMove, rec.BookmakerCount),
		DataPresent: true,
	}
}

// evalRealityCheck translates the external convergence signal. Kept on a
// low weight so it cannot double count tactical or xG evidence.
func evalRealityCheck(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	rc := ctx.RealityCheck
	if rc == nil {
		return absent("no reality-check result")
	}

	var alignment float64
	switch rc.ConvergenceStatus {
	case "strong":
		alignment = 1.0
	case "converging":
		alignment = 0.6
	case "mixed":
		alignment = 0.0
	case "diverging":
		alignment = -1.0
	}
	alignment *= rc.RealityScore / 100

	return models.LayerScore{
		Score:       scale(alignment, weight),
		Reason:      fmt.Sprintf("heuristics %s (reality score %.0f)", rc.ConvergenceStatus, rc.RealityScore),
		DataPresent: true,
	}
}
