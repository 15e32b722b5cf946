// Package jobs hosts the background maintenance schedule: snapshot
// retention, the settlement sweep, and name-table refresh.
package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/matchpulse/betengine/internal/models"
	"github.com/matchpulse/betengine/internal/resolver"
	"github.com/matchpulse/betengine/pkg/database"
)

// staleAfter is how long a committed bet may sit unsettled before the
// sweep flags it.
const staleAfter = 48 * time.Hour

// Scheduler owns the cron instance and its job closures.
type Scheduler struct {
	cron          *cron.Cron
	db            *database.DB
	resolver      *resolver.Resolver
	retentionDays int
}

func NewScheduler(db *database.DB, res *resolver.Resolver, retentionDays int) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		db:            db,
		resolver:      res,
		retentionDays: retentionDays,
	}
}

// Start registers the schedule and launches the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 4 * * *", s.purgeExpiredSnapshots); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("15 * * * *", s.sweepUnsettled); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("*/30 * * * *", s.reloadResolver); err != nil {
		return err
	}
	s.cron.Start()
	logrus.WithField("retention_days", s.retentionDays).Info("Background jobs scheduled")
	return nil
}

// Stop halts the schedule and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// purgeExpiredSnapshots drops settled snapshots past the retention
// horizon along with their votes. Unsettled rows are never purged:
// losing an open position's audit trail is worse than keeping it.
func (s *Scheduler) purgeExpiredSnapshots() {
	if s.retentionDays <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	var betIDs []string
	err := s.db.Model(&models.BetSnapshot{}).
		Where("settled_at IS NOT NULL AND created_at < ?", cutoff).
		Pluck("bet_id", &betIDs).Error
	if err != nil {
		logrus.WithError(err).Error("Retention scan failed")
		return
	}
	if len(betIDs) == 0 {
		return
	}

	if err := s.db.Where("bet_id IN ?", betIDs).Delete(&models.ModelVote{}).Error; err != nil {
		logrus.WithError(err).Error("Retention purge of votes failed")
		return
	}
	if err := s.db.Where("bet_id IN ?", betIDs).Delete(&models.BetSnapshot{}).Error; err != nil {
		logrus.WithError(err).Error("Retention purge of snapshots failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"purged": len(betIDs),
		"cutoff": cutoff.Format("2006-01-02"),
	}).Info("Snapshot retention purge complete")
}

// sweepUnsettled flags committed bets whose result never arrived.
// Results come in through the settlement endpoint, so the sweep only
// surfaces the backlog, it does not invent outcomes.
func (s *Scheduler) sweepUnsettled() {
	cutoff := time.Now().UTC().Add(-staleAfter)

	var count int64
	err := s.db.Model(&models.BetSnapshot{}).
		Where("settled_at IS NULL AND final_action IN ? AND created_at < ?",
			[]string{string(models.ActionBet), string(models.ActionStrongBet)}, cutoff).
		Count(&count).Error
	if err != nil {
		logrus.WithError(err).Error("Settlement sweep failed")
		return
	}
	if count > 0 {
		logrus.WithFields(logrus.Fields{
			"unsettled": count,
			"older":     staleAfter.String(),
		}).Warn("Committed bets awaiting settlement")
	}
}

func (s *Scheduler) reloadResolver() {
	if s.resolver == nil {
		return
	}
	if err := s.resolver.Reload(); err != nil {
		logrus.WithError(err).Error("Resolver reload failed")
	}
}
