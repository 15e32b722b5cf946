package layers

import (
	"fmt"
	"math"

	"github.com/matchpulse/betengine/internal/models"
)

// evalTeamClass scores structural quality: power difference, combined
// attack, and combined defensive weakness.
func evalTeamClass(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	home, away := ctx.HomeClass, ctx.AwayClass
	if home == nil || away == nil {
		return absent("team class missing for one or both sides")
	}

	powerDiff := home.PowerIndex - away.PowerIndex
	combinedAttack := (home.AttackRating + away.AttackRating) / 2
	combinedWeakness := ((100 - home.DefenseRating) + (100 - away.DefenseRating)) / 2
	tierGap := home.TierValue() - away.TierValue()

	var alignment float64
	var reason string
	switch {
	case models.IsOverMarket(p.Market):
		// lopsided attack into weak defense produces goals
		alignment = (combinedAttack*combinedWeakness/10000-0.25)/0.25 - 0.2*math.Abs(float64(tierGap))/3
		reason = fmt.Sprintf("attack %.0f vs defensive weakness %.0f", combinedAttack, combinedWeakness)
	case models.IsUnderMarket(p.Market):
		tightness := (home.DefenseRating + away.DefenseRating) / 2
		alignment = (tightness - 60) / 40
		reason = fmt.Sprintf("combined defense %.0f", tightness)
	case p.Market == models.MarketHomeWin || p.Market == models.MarketDC1X || models.IsAsian(p.Market):
		alignment = powerDiff / 40
		reason = fmt.Sprintf("power difference %+.0f toward home", powerDiff)
	case p.Market == models.MarketAwayWin || p.Market == models.MarketDCX2:
		alignment = -powerDiff / 40
		reason = fmt.Sprintf("power difference %+.0f toward away", -powerDiff)
	case p.Market == models.MarketDraw || p.Market == models.MarketHTDraw:
		alignment = (20 - math.Abs(powerDiff)) / 40
		reason = fmt.Sprintf("power gap %.0f, close sides favour the draw", math.Abs(powerDiff))
	default:
		// BTTS-flavoured: close tiers with decent attacks
		alignment = (1-math.Abs(float64(tierGap))/3)*0.6 + (combinedAttack-60)/100
		reason = fmt.Sprintf("tier gap %d, combined attack %.0f", tierGap, combinedAttack)
	}
	return models.LayerScore{Score: scale(alignment, weight), Reason: reason, DataPresent: true}
}

// evalXG scores expected-goal alignment and regression pressure. A side
// scoring well above its xG is due a correction, which counts against
// goal-heavy markets.
func evalXG(weight int, p *models.Pick, ctx *models.MatchContext) models.LayerScore {
	home, away := ctx.HomeIntel, ctx.AwayIntel
	if home == nil || away == nil {
		return absent("xG profile missing for one or both sides")
	}
	if home.XGForPerMatch == 0 && away.XGForPerMatch == 0 {
		return absent("xG fields not populated")
	}

	expTotal := (home.XGForPerMatch+away.XGAgainstPerMatch)/2 +
		(away.XGForPerMatch+home.XGAgainstPerMatch)/2
	overheat := home.OverperformanceGoals + away.OverperformanceGoals

	var alignment float64
	switch {
	case models.IsOverMarket(p.Market):
		alignment = (expTotal - 2.6) / 1.4
		if overheat > 0.3 {
			alignment -= overheat / 2 // regression to the mean
		}
	case models.IsUnderMarket(p.Market):
		alignment = (2.6 - expTotal) / 1.4
		if overheat > 0.3 {
			alignment += overheat / 3
		}
	case p.Market == models.MarketHomeWin || p.Market == models.MarketDC1X:
		alignment = ((home.XGForPerMatch - home.XGAgainstPerMatch) - (away.XGForPerMatch - away.XGAgainstPerMatch)) / 1.5
	case p.Market == models.MarketAwayWin || p.Market == models.MarketDCX2:
		alignment = ((away.XGForPerMatch - away.XGAgainstPerMatch) - (home.XGForPerMatch - home.XGAgainstPerMatch)) / 1.5
	default:
		alignment = (expTotal - 2.6) / 2.8
	}
	return models.LayerScore{
		Score:       scale(alignment, weight),
		Reason:      fmt.Sprintf("expected total %.2f, overperformance %+.2f", expTotal, overheat),
		DataPresent: true,
	}
}
