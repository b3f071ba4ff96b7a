package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	"schoolhub_backend/internals/features/schools/schools/service"
	"schoolhub_backend/internals/helpers/dbtime"
)

// StartTrialSweeper expires overdue trials on TRIAL_SWEEP_CRON (default hourly).
// The returned cron is already running; main stops it on shutdown.
func StartTrialSweeper(db *gorm.DB) *cron.Cron {
	schedule := configs.GetEnv("TRIAL_SWEEP_CRON", "@every 1h")
	svc := service.NewSchoolService(db)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		RunTrialSweep(ctx, svc)
	})
	if err != nil {
		log.Fatalf("[TRIAL-SWEEP] add cron failed: %v", err)
	}
	log.Printf("[TRIAL-SWEEP] started schedule=%q", schedule)
	c.Start()
	return c
}

// RunTrialSweep runs one pass; errors are logged, not returned.
func RunTrialSweep(ctx context.Context, svc *service.SchoolService) int64 {
	n, err := svc.SweepExpiredTrials(ctx, dbtime.Now())
	if err != nil {
		log.Printf("[TRIAL-SWEEP] error: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("[TRIAL-SWEEP] %d school(s) moved to expired", n)
	}
	return n
}
