package seeds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhub_backend/internals/databases/testdb"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	userModel "schoolhub_backend/internals/features/users/user/model"
)

func TestRunAllSeedsIsIdempotent(t *testing.T) {
	db := testdb.Open(t)
	t.Setenv("SEED_ADMIN_EMAIL", "Root@SchoolHub.test")
	t.Setenv("SEED_ADMIN_PASSWORD", "s3cret-pass")
	ctx := context.Background()

	RunAllSeeds(ctx, db)
	RunAllSeeds(ctx, db)

	var schools []schoolModel.SchoolModel
	require.NoError(t, db.Order("school_slug").Find(&schools).Error)
	require.Len(t, schools, 4)
	slugs := make([]string, 0, len(schools))
	for _, s := range schools {
		slugs = append(slugs, s.SchoolSlug)
		assert.Equal(t, schoolModel.SubscriptionTrial, s.SchoolSubscriptionStatus)
	}
	assert.Equal(t, []string{"demo-combined", "demo-junior", "demo-primary", "demo-senior"}, slugs)

	var admins []userModel.UserModel
	require.NoError(t, db.Where("role = ?", "admin").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@schoolhub.test", admins[0].Email)
	assert.Nil(t, admins[0].SchoolID)
	assert.Equal(t, userModel.UserStatusActive, admins[0].Status)
}

func TestRunAllSeedsWithoutAdminCredentials(t *testing.T) {
	db := testdb.Open(t)
	t.Setenv("SEED_ADMIN_EMAIL", "")
	t.Setenv("SEED_ADMIN_PASSWORD", "")

	RunAllSeeds(context.Background(), db)

	var n int64
	require.NoError(t, db.Model(&userModel.UserModel{}).Count(&n).Error)
	assert.Zero(t, n)
}
