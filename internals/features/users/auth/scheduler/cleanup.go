package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	authRepo "schoolhub_backend/internals/features/users/auth/repository"
	"schoolhub_backend/internals/helpers/dbtime"
)

// StartBlacklistCleanupScheduler purges expired token_blacklist rows on
// BLACKLIST_CLEANUP_CRON (default daily).
func StartBlacklistCleanupScheduler(db *gorm.DB) *cron.Cron {
	schedule := configs.GetEnv("BLACKLIST_CLEANUP_CRON", "@daily")

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, func() { RunBlacklistCleanup(db) }); err != nil {
		log.Fatalf("[CLEANUP] add cron failed: %v", err)
	}
	log.Printf("[CLEANUP] token_blacklist cleanup schedule=%q", schedule)
	c.Start()
	return c
}

func RunBlacklistCleanup(db *gorm.DB) int64 {
	n, err := authRepo.CleanupExpiredBlacklist(db, dbtime.Now())
	if err != nil {
		log.Printf("[CLEANUP ERROR] token_blacklist: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("[CLEANUP] %d expired token(s) removed", n)
	}
	return n
}
