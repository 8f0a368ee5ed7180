package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAddonRepository implements editors.AddonRepository using GORM
type GormAddonRepository struct {
	db *gorm.DB
}

// NewGormAddonRepository creates a new GormAddonRepository
func NewGormAddonRepository(db *gorm.DB) *GormAddonRepository {
	return &GormAddonRepository{db: db}
}

// FindAddon finds an add-on by its ID
func (r *GormAddonRepository) FindAddon(ctx context.Context, id uuid.UUID) (*editors.Addon, error) {
	var model models.AddonModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindVersion finds a version with its files and supported applications
func (r *GormAddonRepository) FindVersion(ctx context.Context, id uuid.UUID) (*editors.Version, error) {
	var model models.VersionModel
	err := r.db.WithContext(ctx).
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("files.platform ASC, files.filename ASC") }).
		Preload("Apps", func(db *gorm.DB) *gorm.DB { return db.Order("version_applications.application_id ASC") }).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// IsAuthor reports whether the user is one of the add-on's authors
func (r *GormAddonRepository) IsAuthor(ctx context.Context, addonID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AddonAuthorModel{}).
		Where("addon_id = ? AND user_id = ?", addonID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
