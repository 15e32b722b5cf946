package probability

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matchpulse/betengine/internal/models"
)

// MatchProbabilities bundles the engines for one match so every market
// is priced off the same matrices.
type MatchProbabilities struct {
	FullTime  *ScoreMatrix
	FirstHalf *ScoreMatrix
	Split     HalfSplit
	HTFT      DoubleResult
}

// Compute builds all per-match probability engines once.
func Compute(lambdaHome, lambdaAway, rho float64, maxGoals, halfMaxGoals int, halfShare, deltaHome, deltaAway float64) *MatchProbabilities {
	ft := NewScoreMatrix(lambdaHome, lambdaAway, rho, maxGoals)
	split := SplitHalves(lambdaHome, lambdaAway, halfShare, deltaHome, deltaAway)
	fh := split.FirstHalfMatrix(halfMaxGoals)

	htHome, htDraw, htAway := fh.MatchOdds()
	ftHome, ftDraw, ftAway := ft.MatchOdds()
	htft := HalfTimeFullTime(
		[3]float64{htHome, htDraw, htAway},
		[3]float64{ftHome, ftDraw, ftAway},
	)

	return &MatchProbabilities{
		FullTime:  ft,
		FirstHalf: fh,
		Split:     split,
		HTFT:      htft,
	}
}

// MarketProb prices one market label. Unknown labels return ok = false
// rather than a zero probability, so callers can distinguish "impossible"
// from "not a market we model".
func (mp *MatchProbabilities) MarketProb(market string) (float64, bool) {
	switch market {
	case models.MarketHomeWin:
		p, _, _ := mp.FullTime.MatchOdds()
		return p, true
	case models.MarketDraw:
		_, p, _ := mp.FullTime.MatchOdds()
		return p, true
	case models.MarketAwayWin:
		_, _, p := mp.FullTime.MatchOdds()
		return p, true
	case models.MarketDC1X:
		p, _, _ := mp.FullTime.DoubleChance()
		return p, true
	case models.MarketDCX2:
		_, p, _ := mp.FullTime.DoubleChance()
		return p, true
	case models.MarketDC12:
		_, _, p := mp.FullTime.DoubleChance()
		return p, true
	case models.MarketOver15:
		p, _ := mp.FullTime.OverUnder(1.5)
		return p, true
	case models.MarketOver25:
		p, _ := mp.FullTime.OverUnder(2.5)
		return p, true
	case models.MarketOver35:
		p, _ := mp.FullTime.OverUnder(3.5)
		return p, true
	case models.MarketUnder15:
		_, p := mp.FullTime.OverUnder(1.5)
		return p, true
	case models.MarketUnder25:
		_, p := mp.FullTime.OverUnder(2.5)
		return p, true
	case models.MarketUnder35:
		_, p := mp.FullTime.OverUnder(3.5)
		return p, true
	case models.MarketBTTSYes:
		p, _ := mp.FullTime.BothTeamsToScore()
		return p, true
	case models.MarketBTTSNo:
		_, p := mp.FullTime.BothTeamsToScore()
		return p, true
	case models.MarketOddGoals:
		p, _ := mp.FullTime.OddEven()
		return p, true
	case models.MarketEvenGoals:
		_, p := mp.FullTime.OddEven()
		return p, true
	case models.MarketFivePlus:
		return mp.FullTime.FivePlus(), true
	case models.MarketHomeWinToNil:
		p, _ := mp.FullTime.WinToNil()
		return p, true
	case models.MarketAwayWinToNil:
		_, p := mp.FullTime.WinToNil()
		return p, true
	case models.MarketBTTSBothHalves:
		return mp.Split.BTTSBothHalves(mp.FirstHalf.MaxGoals), true
	case models.MarketHTHomeWin:
		p, _, _ := mp.FirstHalf.MatchOdds()
		return p, true
	case models.MarketHTDraw:
		_, p, _ := mp.FirstHalf.MatchOdds()
		return p, true
	case models.MarketHTAwayWin:
		_, _, p := mp.FirstHalf.MatchOdds()
		return p, true
	case models.MarketHTOver05:
		p, _ := mp.FirstHalf.OverUnder(0.5)
		return p, true
	case models.MarketHTBTTSYes:
		p, _ := mp.FirstHalf.BothTeamsToScore()
		return p, true
	}

	if models.IsCorrectScore(market) {
		h, a, err := ParseCorrectScore(market)
		if err != nil {
			return 0, false
		}
		return mp.FullTime.CorrectScore(h, a), true
	}
	if models.IsAsian(market) {
		side, line, err := ParseAsianMarket(market)
		if err != nil {
			return 0, false
		}
		res := mp.FullTime.AsianHandicap(lineForSide(side, line))
		return res.EffectiveProb(side == "home"), true
	}
	return 0, false
}

// lineForSide maps an away-side handicap onto the home-perspective matrix.
func lineForSide(side string, line float64) float64 {
	if side == "away" {
		return -line
	}
	return line
}

// ParseCorrectScore decodes "cs_<home>_<away>".
func ParseCorrectScore(market string) (int, int, error) {
	parts := strings.Split(market, "_")
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("malformed correct-score market %q", market)
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed correct-score market %q", market)
	}
	a, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed correct-score market %q", market)
	}
	return h, a, nil
}

// ParseAsianMarket decodes "ah_<side>_<line>", e.g. "ah_home_-0.5".
func ParseAsianMarket(market string) (string, float64, error) {
	parts := strings.SplitN(market, "_", 3)
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("malformed asian market %q", market)
	}
	side := parts[1]
	if side != "home" && side != "away" {
		return "", 0, fmt.Errorf("malformed asian market %q", market)
	}
	line, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed asian market %q", market)
	}
	return side, line, nil
}

// AsianMarketLabel builds the canonical label for a handicap line.
func AsianMarketLabel(side string, line float64) string {
	return fmt.Sprintf("ah_%s_%g", side, line)
}

// CorrectScoreLabel builds the canonical label for a scoreline.
func CorrectScoreLabel(home, away int) string {
	return fmt.Sprintf("cs_%d_%d", home, away)
}
