package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedActivity(t *testing.T, db *gorm.DB, action editors.LogAction, at time.Time) *models.ActivityLogModel {
	t.Helper()
	entry := &models.ActivityLogModel{
		ID:        uuid.New(),
		Action:    action,
		UserID:    uuid.New(),
		UserName:  "editor",
		CreatedAt: at,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestGormActivityLogRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormActivityLogRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	old := seedActivity(t, db, editors.LogApproveVersion, daysAgo(now, 10))
	recent := seedActivity(t, db, editors.LogRejectVersion, daysAgo(now, 1))
	seedActivity(t, db, editors.LogCommentVersion, now)
	seedActivity(t, db, editors.LogAction(99), now)

	t.Run("lists newest first", func(t *testing.T) {
		entries, total, err := repo.List(ctx, editors.ActivityFilter{Actions: editors.EditorEventActions}, shared.NewPageRequest(1, 50))
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, entries, 3)
		assert.Equal(t, editors.LogCommentVersion, entries[0].Action)
		assert.Equal(t, old.ID, entries[2].ID)
	})

	t.Run("filters by date range", func(t *testing.T) {
		start := daysAgo(now, 2)
		end := now
		entries, total, err := repo.List(ctx, editors.ActivityFilter{
			Actions: editors.EditorEventActions,
			Start:   &start,
			End:     &end,
		}, shared.NewPageRequest(1, 50))
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, recent.ID, entries[0].ID)
	})

	t.Run("find by id respects actions", func(t *testing.T) {
		found, err := repo.FindByID(ctx, recent.ID, editors.EditorEventActions)
		require.NoError(t, err)
		assert.Equal(t, editors.LogRejectVersion, found.Action)

		_, err = repo.FindByID(ctx, recent.ID, []editors.LogAction{editors.LogCommentVersion})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("latest", func(t *testing.T) {
		entries, err := repo.Latest(ctx, editors.ReviewQueueActions, 6)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, recent.ID, entries[0].ID)
	})
}

func TestGormApprovalRepository_TopReviewers(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormApprovalRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	alice, bob := uuid.New(), uuid.New()
	approve := func(user uuid.UUID, name string, at time.Time) {
		require.NoError(t, db.Create(&models.ApprovalModel{
			BaseModel:  models.BaseModel{ID: uuid.New(), CreatedAt: at, UpdatedAt: at},
			UserID:     user,
			UserName:   name,
			AddonID:    uuid.New(),
			ReviewType: editors.ReviewPending,
			Action:     editors.StatusPublic,
		}).Error)
	}
	approve(alice, "alice", daysAgo(now, 60))
	approve(alice, "alice", daysAgo(now, 61))
	approve(alice, "alice", daysAgo(now, 62))
	approve(bob, "bob", now)
	approve(bob, "bob", now)

	all, err := repo.TopReviewers(ctx, nil, 5)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alice", all[0].UserName)
	assert.Equal(t, int64(3), all[0].ApprovalCount)

	since := daysAgo(now, 7)
	recent, err := repo.TopReviewers(ctx, &since, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, bob, recent[0].UserID)
	assert.Equal(t, int64(2), recent[0].ApprovalCount)
}

func TestGormEventLogRepository_NewEditors(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()
	for i, action := range []string{editors.EventActionGroupAddUser, "group_removemember", editors.EventActionGroupAddUser} {
		require.NoError(t, db.Create(&models.EventLogModel{
			ID:              uuid.New(),
			Type:            editors.EventTypeAdmin,
			Action:          action,
			UserID:          uuid.New(),
			ChangedUserID:   uuid.New(),
			ChangedUserName: "user" + string(rune('0'+i)),
			CreatedAt:       now.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	events, err := NewGormEventLogRepository(db).NewEditors(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "user2", events[0].ChangedUserName)
}

func TestGormReviewRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormReviewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	addon, _ := seedAddon(t, db, addonSeed{Name: "Popular", Status: editors.StatusPublic})
	newer := seedFlaggedReview(t, db, &addon.ID, daysAgo(now, 1))
	older := seedFlaggedReview(t, db, &addon.ID, daysAgo(now, 3))
	seedFlaggedReview(t, db, nil, daysAgo(now, 5))

	t.Run("moderated queue orders by oldest flag", func(t *testing.T) {
		reviews, total, err := repo.ListModerated(ctx, shared.NewPageRequest(1, 20))
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, reviews, 2)
		assert.Equal(t, older.ID, reviews[0].ID)
		assert.Equal(t, newer.ID, reviews[1].ID)
		assert.Equal(t, "Popular", reviews[0].AddonName)
		require.Len(t, reviews[0].Flags, 1)
		assert.Equal(t, editors.FlagSpam, reviews[0].Flags[0].Flag)
	})

	t.Run("count includes orphaned reviews", func(t *testing.T) {
		count, err := repo.CountModerated(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("flagged reviews of an addon", func(t *testing.T) {
		reviews, err := repo.ListFlaggedForAddon(ctx, addon.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
	})
}

func TestGormSiteConfigRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSiteConfigRepository(db)
	ctx := context.Background()

	value, err := repo.Get(ctx, editors.MotdConfigKey)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, repo.Set(ctx, editors.MotdConfigKey, "Welcome"))
	require.NoError(t, repo.Set(ctx, editors.MotdConfigKey, "Queue is long today"))

	value, err = repo.Get(ctx, editors.MotdConfigKey)
	require.NoError(t, err)
	assert.Equal(t, "Queue is long today", value)
}

func TestGormAppVersionRepository_ListForApplication(t *testing.T) {
	db := newTestDB(t)
	for _, v := range []models.AppVersionModel{
		{ApplicationID: editors.AppFirefox, Version: "3.6", VersionInt: 3060000},
		{ApplicationID: editors.AppFirefox, Version: "4.0", VersionInt: 4000000},
		{ApplicationID: editors.AppThunderbird, Version: "3.1", VersionInt: 3010000},
	} {
		v := v
		require.NoError(t, db.Create(&v).Error)
	}

	versions, err := NewGormAppVersionRepository(db).ListForApplication(context.Background(), editors.AppFirefox)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "4.0", versions[0].Version)
	assert.Equal(t, "3.6", versions[1].Version)
}

func TestGormIssuerRepository_FindByKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormIssuerRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.IssuerModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Key:       "app-key",
		Secret:    "app-secret",
		Name:      "Some App",
		Active:    true,
	}).Error)
	inactive := &models.IssuerModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Key:       "old-key",
		Secret:    "old-secret",
		Active:    true,
	}
	require.NoError(t, db.Create(inactive).Error)
	require.NoError(t, db.Model(inactive).Update("active", false).Error)

	issuer, err := repo.FindByKey(ctx, "app-key")
	require.NoError(t, err)
	assert.Equal(t, "app-secret", issuer.Secret)

	_, err = repo.FindByKey(ctx, "old-key")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByKey(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
