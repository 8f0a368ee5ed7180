package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewRepository implements editors.ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

const flaggedReviewCondition = "reviews.editor_review = ? AND EXISTS (SELECT 1 FROM review_flags rf WHERE rf.review_id = reviews.id)"

func preloadFlags(db *gorm.DB) *gorm.DB {
	return db.Order("review_flags.created_at ASC")
}

// ListModerated returns flagged reviews of existing add-ons, oldest flag first
func (r *GormReviewRepository) ListModerated(ctx context.Context, page shared.PageRequest) ([]editors.Review, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Where(flaggedReviewCondition, true).
		Where("reviews.addon_id IS NOT NULL")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReviewModel
	if err := query.
		Preload("Flags", preloadFlags).
		Preload("Addon").
		Order("(SELECT MIN(rf.created_at) FROM review_flags rf WHERE rf.review_id = reviews.id) ASC, reviews.id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toReviews(rows), total, nil
}

// CountModerated counts reviews waiting for moderation
func (r *GormReviewRepository) CountModerated(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Where(flaggedReviewCondition, true).
		Count(&total).Error
	return total, err
}

// ListFlaggedForAddon returns flagged reviews of one add-on, newest first
func (r *GormReviewRepository) ListFlaggedForAddon(ctx context.Context, addonID uuid.UUID) ([]editors.Review, error) {
	var rows []models.ReviewModel
	if err := r.db.WithContext(ctx).
		Preload("Flags", preloadFlags).
		Where("addon_id = ? AND flag = ?", addonID, true).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReviews(rows), nil
}

func toReviews(rows []models.ReviewModel) []editors.Review {
	out := make([]editors.Review, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
