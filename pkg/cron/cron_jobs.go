package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"rosterly/internal/services"
	"rosterly/pkg/utils"
)

// StartCronJobs schedules the two background tasks: the daily expiration
// sweep and the propagation retry pump. The returned *cron.Cron lets main
// stop both on shutdown; the underlying service methods are also callable
// directly (admin trigger, tests) without the scheduler.
func StartCronJobs(invitations *services.InvitationService, propagator *services.AcceptancePropagator) *cron.Cron {
	c := cron.New()

	// Runs daily at midnight to expire stale pending invitations
	_, err := c.AddFunc("0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		expired, err := invitations.ExpireOldInvitations(ctx)
		if err != nil {
			utils.Logger.Errorf("Cron job failed to expire invitations: %v", err)
			return
		}
		if expired > 0 {
			utils.Logger.Infof("Expiration sweep finished, %d invitations expired", expired)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule invitation expiration job: %v", err)
	}

	// Runs every minute to retry failed acceptance propagations
	_, err = c.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()

		if err := propagator.ProcessDueRetries(ctx); err != nil {
			utils.Logger.Errorf("Cron job failed to process propagation retries: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule propagation retry job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (invitation expiry daily at midnight, propagation retries every minute)")
	return c
}
