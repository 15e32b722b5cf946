// Package notifier pushes high-conviction picks to a Telegram chat.
// Alerting is best effort: a send failure is logged, never propagated
// into the analysis path.
package notifier

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/matchpulse/betengine/internal/models"
)

// sender is the slice of tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier formats and sends pick alerts, rate limited so a large batch
// cannot trip Telegram's per-chat throttle.
type Notifier struct {
	bot      sender
	chatID   int64
	minScore float64
	limiter  *rate.Limiter
}

// New builds a Notifier from a bot token. An empty token disables
// alerting and returns nil, which every method tolerates.
func New(token string, chatID int64, minScore float64, ratePerMin int) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	bot.Debug = false
	logrus.WithField("chat_id", chatID).Info("Telegram notifier initialized")
	return newWith(bot, chatID, minScore, ratePerMin), nil
}

func newWith(bot sender, chatID int64, minScore float64, ratePerMin int) *Notifier {
	if ratePerMin <= 0 {
		ratePerMin = 20
	}
	return &Notifier{
		bot:      bot,
		chatID:   chatID,
		minScore: minScore,
		limiter:  rate.NewLimiter(rate.Limit(float64(ratePerMin)/60.0), 1),
	}
}

// ShouldAlert reports whether a pick clears the alert bar: a committed
// bet tier at or above the configured score floor.
func (n *Notifier) ShouldAlert(p *models.Pick) bool {
	if n == nil {
		return false
	}
	if p.Action != models.ActionBet && p.Action != models.ActionStrongBet {
		return false
	}
	return p.FinalScore >= n.minScore
}

// NotifyPick sends one pick alert, waiting on the rate limiter first.
func (n *Notifier) NotifyPick(ctx context.Context, p *models.Pick) {
	if !n.ShouldAlert(p) {
		return
	}
	if err := n.limiter.Wait(ctx); err != nil {
		logrus.WithError(err).Warn("Telegram alert dropped waiting on rate limiter")
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, FormatPick(p))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"match":  p.MatchID,
			"market": p.Market,
		}).Error("Telegram alert failed")
	}
}

// NotifyRun summarizes a completed batch when it produced alerts.
func (n *Notifier) NotifyRun(ctx context.Context, picks []*models.Pick) {
	if n == nil {
		return
	}
	for _, p := range picks {
		n.NotifyPick(ctx, p)
	}
}

// FormatPick renders the alert body in Telegram HTML.
func FormatPick(p *models.Pick) string {
	var b strings.Builder
	icon := "⚡" // BET
	if p.Action == models.ActionStrongBet {
		icon = "\U0001f525" // STRONG_BET
	}
	fmt.Fprintf(&b, "%s <b>%s</b>\n", icon, p.Action)
	fmt.Fprintf(&b, "%s vs %s", p.HomeTeam, p.AwayTeam)
	if p.League != "" {
		fmt.Fprintf(&b, " (%s)", p.League)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Market: <b>%s</b> @ %.2f\n", p.Market, p.Price)
	fmt.Fprintf(&b, "Score %.1f | edge %+.1f%% | stake %.2f%%\n",
		p.FinalScore, p.Edge*100, p.Stake*100)
	fmt.Fprintf(&b, "Consensus: %s (%d heads)", p.ConsensusStrength, p.ConsensusCount)
	if p.SweetSpot {
		b.WriteString(" | sweet spot")
	}
	if len(p.Warnings) > 0 {
		fmt.Fprintf(&b, "\n⚠ %s", strings.Join(p.Warnings, "; "))
	}
	return b.String()
}
