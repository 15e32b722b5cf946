package models

import "strings"

// Market labels form a closed set. Correct-score markets are labelled
// "cs_<home>_<away>" and Asian lines "ah_<side>_<line>"; everything else is
// a fixed constant.
const (
	MarketHomeWin = "home_win"
	MarketDraw    = "draw"
	MarketAwayWin = "away_win"

	MarketDC1X = "dc_1x"
	MarketDCX2 = "dc_x2"
	MarketDC12 = "dc_12"

	MarketOver15  = "over_15"
	MarketOver25  = "over_25"
	MarketOver35  = "over_35"
	MarketUnder15 = "under_15"
	MarketUnder25 = "under_25"
	MarketUnder35 = "under_35"

	MarketBTTSYes = "btts_yes"
	MarketBTTSNo  = "btts_no"

	MarketOddGoals  = "odd_goals"
	MarketEvenGoals = "even_goals"
	MarketFivePlus  = "five_plus"

	MarketHomeWinToNil   = "home_win_to_nil"
	MarketAwayWinToNil   = "away_win_to_nil"
	MarketBTTSBothHalves = "btts_both_halves"

	MarketHTHomeWin = "ht_home_win"
	MarketHTDraw    = "ht_draw"
	MarketHTAwayWin = "ht_away_win"
	MarketHTOver05  = "ht_over_05"
	MarketHTBTTSYes = "ht_btts_yes"
)

// Action is the decision tier for a pick.
type Action string

const (
	ActionVeto      Action = "VETO"
	ActionSkip      Action = "SKIP"
	ActionWatch     Action = "WATCH"
	ActionBet       Action = "BET"
	ActionStrongBet Action = "STRONG_BET"
)

// Rank orders actions for comparisons; higher is more committed.
func (a Action) Rank() int {
	switch a {
	case ActionStrongBet:
		return 4
	case ActionBet:
		return 3
	case ActionWatch:
		return 2
	case ActionSkip:
		return 1
	default:
		return 0
	}
}

// Result is the settled outcome of a bet-tier pick.
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
	ResultPush Result = "PUSH"
	ResultVoid Result = "VOID"
)

// PickState tracks the pick lifecycle: NEW -> TRAPPED | EVALUATED;
// EVALUATED -> one of the actions; BET tiers -> SETTLED.
type PickState string

const (
	PickStateNew       PickState = "NEW"
	PickStateTrapped   PickState = "TRAPPED"
	PickStateEvaluated PickState = "EVALUATED"
	PickStateSettled   PickState = "SETTLED"
)

// IsOverMarket reports whether a market is on the "goals happen" side,
// which several layers use to orient their contribution.
func IsOverMarket(market string) bool {
	switch market {
	case MarketOver15, MarketOver25, MarketOver35, MarketBTTSYes,
		MarketFivePlus, MarketHTOver05, MarketHTBTTSYes, MarketBTTSBothHalves:
		return true
	}
	return false
}

// IsUnderMarket reports whether a market rewards defensive outcomes.
func IsUnderMarket(market string) bool {
	switch market {
	case MarketUnder15, MarketUnder25, MarketUnder35, MarketBTTSNo,
		MarketHomeWinToNil, MarketAwayWinToNil:
		return true
	}
	return false
}

// IsCorrectScore reports whether the market is an individual scoreline.
func IsCorrectScore(market string) bool {
	return strings.HasPrefix(market, "cs_")
}

// IsAsian reports whether the market is an Asian handicap line.
func IsAsian(market string) bool {
	return strings.HasPrefix(market, "ah_")
}
