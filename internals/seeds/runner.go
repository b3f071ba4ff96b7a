package seeds

import (
	"context"
	"log"

	"gorm.io/gorm"

	"schoolhub_backend/internals/configs"
	schoolSeeds "schoolhub_backend/internals/seeds/schools"
	userSeeds "schoolhub_backend/internals/seeds/users"
)

// RunAllSeeds is idempotent. SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are
// optional; without them no admin account is created.
func RunAllSeeds(ctx context.Context, db *gorm.DB) {
	//* Users
	if _, err := userSeeds.SeedPlatformAdmin(ctx, db,
		configs.GetEnv("SEED_ADMIN_EMAIL"), configs.GetEnv("SEED_ADMIN_PASSWORD")); err != nil {
		log.Printf("[SEED] platform admin: %v", err)
	}

	//* Schools
	n := schoolSeeds.SeedDemoSchools(ctx, db)
	log.Printf("[SEED] done, %d demo school(s) created", n)
}
