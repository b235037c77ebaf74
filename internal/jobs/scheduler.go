// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/batyrkan1220/Coin-Rewards-Shop-sub000/internal/repo"
)

type Scheduler struct {
	cron *cron.Cron
	repo *repo.Repo
}

func NewScheduler(r *repo.Repo) *Scheduler {
	return &Scheduler{cron: cron.New(), repo: r}
}

// Start schedules the hourly invite-token expiry sweep. The sweep is pure
// hygiene: consumption re-checks expiry in its own guard, so a missed run
// never admits anyone.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.AddFunc("0 * * * *", func() {
		n, err := s.repo.DeactivateExpiredInvites(ctx)
		if err != nil {
			log.WithError(err).Error("invite expiry sweep failed")
			return
		}
		if n > 0 {
			log.WithField("deactivated", n).Info("expired invites deactivated")
		}
	})
	s.cron.Start()
	log.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("scheduler stopped")
}
