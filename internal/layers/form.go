package layers

import (
	"fmt"
	"strings"

	"github.com/matchpulse/betengine/internal/models"
)

// evalMomentum reads rolling form and availability signals.
func evalMomentum(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	home, away := ctx.HomeMomentum, ctx.AwayMomentum
	if home == nil || away == nil {
		return absent("momentum missing for one or both sides")
	}

	homeAttack := float64(home.GoalsScoredLast5) / 5
	awayAttack := float64(away.GoalsScoredLast5) / 5
	homeLeaky := float64(home.GoalsConcededLast5) / 5
	awayLeaky := float64(away.GoalsConcededLast5) / 5

	var alignment float64
	var reason string
	switch {
	case models.IsOverMarket(p.Market):
		// both sides scoring freely, or both leaking
		alignment = (homeAttack+awayAttack-2.4)/2.4 + (homeLeaky+awayLeaky-2.4)/4.8
		reason = fmt.Sprintf("last-5 goals %d+%d scored, %d+%d conceded",
			home.GoalsScoredLast5, away.GoalsScoredLast5, home.GoalsConcededLast5, away.GoalsConcededLast5)
	case models.IsUnderMarket(p.Market):
		alignment = (2.4-homeAttack-awayAttack)/2.4 + (2.4-homeLeaky-awayLeaky)/4.8
		reason = fmt.Sprintf("last-5 goals %d+%d scored", home.GoalsScoredLast5, away.GoalsScoredLast5)
	case p.Market == models.MarketHomeWin || p.Market == models.MarketDC1X:
		alignment = (home.MomentumScore - away.MomentumScore) / 60
		reason = fmt.Sprintf("momentum %.0f vs %.0f", home.MomentumScore, away.MomentumScore)
	case p.Market == models.MarketAwayWin || p.Market == models.MarketDCX2:
		alignment = (away.MomentumScore - home.MomentumScore) / 60
		reason = fmt.Sprintf("momentum %.0f vs %.0f", home.MomentumScore, away.MomentumScore)
	default:
		alignment = (home.MomentumScore + away.MomentumScore - 100) / 120
		reason = "combined momentum"
	}

	// availability and fatigue shave conviction regardless of direction
	drag := 0.0
	for _, m := range []*models.TeamMomentum{home, away} {
		if m.KeyPlayerAbsent {
			drag += 0.15
		}
		if m.CupFatigue {
			drag += 0.10
		}
		if m.CongestedSchedule {
			drag += 0.05
		}
	}
	if drag > 0 {
		if alignment > 0 {
			alignment -= drag
		} else {
			alignment += drag / 2
		}
		reason += fmt.Sprintf("; availability drag %.0f%%", drag*100)
	}
	if home.NewCoachBounce || away.NewCoachBounce {
		p.AddWarning("new-coach bounce in play, form signal unstable")
	}

	return models.LayerScore{Score: scale(alignment, weight), Reason: reason, DataPresent: true}
}

// evalHeadToHead weighs the pair history by volume; two meetings do not
// make a pattern.
func evalHeadToHead(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	h2h := ctx.H2H
	if h2h == nil || h2h.TotalMatches == 0 {
		return absent("no head-to-head history")
	}

	volume := float64(h2h.TotalMatches) / 6
	if volume > 1 {
		volume = 1
	}

	var alignment float64
	switch {
	case p.Market == models.MarketBTTSYes || p.Market == models.MarketBTTSBothHalves || p.Market == models.MarketHTBTTSYes:
		alignment = (h2h.BTTSPct - 0.5) / 0.5
		alignment += streakBonus(h2h.Last3BTTS, "yes")
	case p.Market == models.MarketBTTSNo:
		alignment = (0.5 - h2h.BTTSPct) / 0.5
		alignment += streakBonus(h2h.Last3BTTS, "no")
	case models.IsOverMarket(p.Market):
		alignment = (h2h.Over25Pct - 0.5) / 0.5
	case models.IsUnderMarket(p.Market):
		alignment = (0.5 - h2h.Over25Pct) / 0.5
	default:
		alignment = (h2h.AvgTotalGoals - 2.6) / 2.6
	}

	return models.LayerScore{
		Score:       scale(alignment*volume, weight),
		Reason:      fmt.Sprintf("%d meetings, BTTS %.0f%%, over2.5 %.0f%%", h2h.TotalMatches, h2h.BTTSPct*100, h2h.Over25Pct*100),
		DataPresent: true,
	}
}

func streakBonus(last3 []string, want string) float64 {
	if len(last3) < 3 {
		return 0
	}
	for _, v := range last3[:3] {
		if !strings.EqualFold(v, want) {
			return 0
		}
	}
	return 0.25
}
