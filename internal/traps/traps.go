package traps

import (
	"fmt"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Verdict is the outcome of the trap check for one pick.
type Verdict struct {
	Trapped           bool
	Reason            string
	AlternativeMarket string
}

// Check applies the blocking veto for (team, market). A trap on either
// side blocks the pick. An unreadable trap table fails closed: the
// caller must treat every pick as unverifiable and SKIP the match.
func Check(p *models.Pick, ctx *models.MatchContext) (Verdict, error) {
	if ctx.TrapTableUnreadable {
		return Verdict{}, utils.ErrTrapTableUnread
	}

	trap := ctx.TrapFor(p.Market)
	if trap == nil {
		return Verdict{}, nil
	}
	if trap.TeamName != ctx.HomeTeam && trap.TeamName != ctx.AwayTeam {
		return Verdict{}, nil
	}

	reason := trap.AlertReason
	if reason == "" {
		reason = fmt.Sprintf("%s alert on %s for %s", trap.AlertLevel, p.Market, trap.TeamName)
	}
	logrus.WithFields(logrus.Fields{
		"match":  p.MatchID,
		"market": p.Market,
		"team":   trap.TeamName,
		"level":  trap.AlertLevel,
	}).Info("Trap veto")

	return Verdict{
		Trapped:           true,
		Reason:            reason,
		AlternativeMarket: trap.AlternativeMarket,
	}, nil
}

// Apply stamps a trapped verdict onto the pick: score zeroed, action
// VETO, lifecycle TRAPPED. It is a no-op for clean verdicts.
func Apply(p *models.Pick, v Verdict) {
	if !v.Trapped {
		return
	}
	p.TrapFlag = true
	p.TrapReason = v.Reason
	p.AlternativeMarket = v.AlternativeMarket
	p.FinalScore = 0
	p.Stake = 0
	p.Action = models.ActionVeto
	p.State = models.PickStateTrapped
}
