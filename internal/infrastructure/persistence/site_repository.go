package persistence

import (
	"context"
	"errors"

	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSiteConfigRepository implements editors.SiteConfigRepository using GORM
type GormSiteConfigRepository struct {
	db *gorm.DB
}

// NewGormSiteConfigRepository creates a new GormSiteConfigRepository
func NewGormSiteConfigRepository(db *gorm.DB) *GormSiteConfigRepository {
	return &GormSiteConfigRepository{db: db}
}

// Get returns the value of key, or an empty string when it is not set
func (r *GormSiteConfigRepository) Get(ctx context.Context, key string) (string, error) {
	var model models.SiteConfigModel
	if err := r.db.WithContext(ctx).First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return model.Value, nil
}

// Set stores value under key
func (r *GormSiteConfigRepository) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.SiteConfigModel{Key: key, Value: value}).Error
}

// GormCannedResponseRepository implements editors.CannedResponseRepository using GORM
type GormCannedResponseRepository struct {
	db *gorm.DB
}

// NewGormCannedResponseRepository creates a new GormCannedResponseRepository
func NewGormCannedResponseRepository(db *gorm.DB) *GormCannedResponseRepository {
	return &GormCannedResponseRepository{db: db}
}

// FindAll returns every canned response ordered by name
func (r *GormCannedResponseRepository) FindAll(ctx context.Context) ([]editors.CannedResponse, error) {
	var rows []models.CannedResponseModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]editors.CannedResponse, len(rows))
	for i, row := range rows {
		out[i] = editors.CannedResponse{ID: row.ID, Name: row.Name, Response: row.Response}
	}
	return out, nil
}

// GormAppVersionRepository implements editors.AppVersionRepository using GORM
type GormAppVersionRepository struct {
	db *gorm.DB
}

// NewGormAppVersionRepository creates a new GormAppVersionRepository
func NewGormAppVersionRepository(db *gorm.DB) *GormAppVersionRepository {
	return &GormAppVersionRepository{db: db}
}

// ListForApplication returns the application's versions, highest first
func (r *GormAppVersionRepository) ListForApplication(ctx context.Context, applicationID int) ([]editors.AppVersion, error) {
	var rows []models.AppVersionModel
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("version_int DESC, version DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]editors.AppVersion, len(rows))
	for i, row := range rows {
		out[i] = editors.AppVersion{ApplicationID: row.ApplicationID, Version: row.Version}
	}
	return out, nil
}
