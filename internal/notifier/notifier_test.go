package notifier

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchpulse/betengine/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func strongPick() *models.Pick {
	p := models.NewPick("m1", "Arsenal", "Chelsea", "Premier League", "btts_yes", 1.85)
	p.Action = models.ActionStrongBet
	p.FinalScore = 74.2
	p.Edge = 0.06
	p.Stake = 0.021
	p.ConsensusStrength = "strong"
	p.ConsensusCount = 5
	p.SweetSpot = true
	return p
}

func TestShouldAlertFiltersByTierAndScore(t *testing.T) {
	n := newWith(&fakeSender{}, 42, 60, 20)

	p := strongPick()
	assert.True(t, n.ShouldAlert(p))

	p.FinalScore = 55
	assert.False(t, n.ShouldAlert(p), "below the score floor")

	p.FinalScore = 80
	p.Action = models.ActionWatch
	assert.False(t, n.ShouldAlert(p), "WATCH never alerts")

	p.Action = models.ActionVeto
	assert.False(t, n.ShouldAlert(p))
}

func TestNilNotifierIsInert(t *testing.T) {
	var n *Notifier
	assert.False(t, n.ShouldAlert(strongPick()))
	n.NotifyRun(context.Background(), []*models.Pick{strongPick()})
}

func TestNotifyPickSendsFormattedMessage(t *testing.T) {
	fake := &fakeSender{}
	n := newWith(fake, 42, 60, 600)

	n.NotifyPick(context.Background(), strongPick())
	require.Len(t, fake.sent, 1)

	msg, ok := fake.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "STRONG_BET")
	assert.Contains(t, msg.Text, "Arsenal vs Chelsea")
	assert.Contains(t, msg.Text, "btts_yes")
	assert.Contains(t, msg.Text, "sweet spot")
}

func TestNotifyRunSkipsQuietPicks(t *testing.T) {
	fake := &fakeSender{}
	n := newWith(fake, 42, 60, 600)

	quiet := strongPick()
	quiet.Action = models.ActionSkip
	loud := strongPick()

	n.NotifyRun(context.Background(), []*models.Pick{quiet, loud})
	assert.Len(t, fake.sent, 1)
}

func TestFormatPickIncludesWarnings(t *testing.T) {
	p := strongPick()
	p.AddWarning("snapshot not recorded")
	text := FormatPick(p)
	assert.True(t, strings.Contains(text, "snapshot not recorded"))
	assert.Contains(t, text, "edge +6.0%")
}
