package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// addonSeed describes an add-on with one version to insert.
type addonSeed struct {
	Name           string
	Type           editors.AddonType
	Status         editors.AddonStatus
	AdminReview    bool
	DisabledByUser bool
	NominatedAt    *time.Time
	Files          []fileSeed
	Apps           []int
}

type fileSeed struct {
	Platform  editors.Platform
	Status    editors.AddonStatus
	CreatedAt time.Time
}

// seedAddon inserts the add-on, its latest version and files.
func seedAddon(t *testing.T, db *gorm.DB, s addonSeed) (*models.AddonModel, *models.VersionModel) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	if s.Type == 0 {
		s.Type = editors.AddonTypeExtension
	}

	addonID := uuid.New()
	version := &models.VersionModel{
		BaseModel:   models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		AddonID:     addonID,
		Version:     "1.0",
		NominatedAt: s.NominatedAt,
	}
	require.NoError(t, db.Create(version).Error)

	addon := &models.AddonModel{
		BaseModel:       models.BaseModel{ID: addonID, CreatedAt: now, UpdatedAt: now},
		Name:            s.Name,
		Type:            s.Type,
		Status:          s.Status,
		AdminReview:     s.AdminReview,
		DisabledByUser:  s.DisabledByUser,
		LatestVersionID: &version.ID,
	}
	require.NoError(t, db.Create(addon).Error)

	for i, f := range s.Files {
		file := &models.FileModel{
			BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: f.CreatedAt, UpdatedAt: f.CreatedAt},
			VersionID: version.ID,
			Platform:  f.Platform,
			Filename:  s.Name + "-" + string(rune('a'+i)) + ".xpi",
			Status:    f.Status,
		}
		require.NoError(t, db.Create(file).Error)
	}
	for _, app := range s.Apps {
		require.NoError(t, db.Create(&models.VersionApplicationModel{
			VersionID:     version.ID,
			ApplicationID: app,
			MinVersion:    "3.0",
			MaxVersion:    "4.0",
		}).Error)
	}
	return addon, version
}

// seedFlaggedReview inserts a review awaiting moderation with one flag raised at flaggedAt.
func seedFlaggedReview(t *testing.T, db *gorm.DB, addonID *uuid.UUID, flaggedAt time.Time) *models.ReviewModel {
	t.Helper()
	review := &models.ReviewModel{
		BaseModel:    models.BaseModel{ID: uuid.New(), CreatedAt: flaggedAt, UpdatedAt: flaggedAt},
		AddonID:      addonID,
		UserID:       uuid.New(),
		UserName:     "fan",
		Title:        "Great",
		Body:         "Buy cheap watches at example.com",
		Rating:       5,
		EditorReview: true,
		Flag:         true,
	}
	require.NoError(t, db.Create(review).Error)
	require.NoError(t, db.Create(&models.ReviewFlagModel{
		ID:        uuid.New(),
		ReviewID:  review.ID,
		UserID:    uuid.New(),
		UserName:  "flagger",
		Flag:      editors.FlagSpam,
		CreatedAt: flaggedAt,
	}).Error)
	return review
}

func daysAgo(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}
