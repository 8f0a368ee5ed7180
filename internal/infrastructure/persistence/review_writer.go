package persistence

import (
	"context"
	"fmt"

	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReviewWriter implements editors.ReviewWriter. Each change is applied
// in a single database transaction.
type GormReviewWriter struct {
	db *gorm.DB
}

// NewGormReviewWriter creates a new GormReviewWriter
func NewGormReviewWriter(db *gorm.DB) *GormReviewWriter {
	return &GormReviewWriter{db: db}
}

// ApplyReview writes the status changes, log entry and approval of a processed review
func (w *GormReviewWriter) ApplyReview(ctx context.Context, change editors.ReviewChange) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		out := change.Outcome

		addonUpdates := map[string]any{}
		if out.AddonStatus != nil {
			addonUpdates["status"] = *out.AddonStatus
		}
		if out.SetAdminReview {
			addonUpdates["admin_review"] = true
		}
		if len(addonUpdates) > 0 {
			res := tx.Model(&models.AddonModel{}).Where("id = ?", change.AddonID).Updates(addonUpdates)
			if res.Error != nil {
				return fmt.Errorf("update addon: %w", res.Error)
			}
		}

		if out.FileStatus != nil && len(out.FileIDs) > 0 {
			if err := tx.Model(&models.FileModel{}).
				Where("id IN ?", out.FileIDs).
				Update("status", *out.FileStatus).Error; err != nil {
				return fmt.Errorf("update files: %w", err)
			}
		}

		if change.Log != nil {
			if err := tx.Create(models.ActivityLogModelFromDomain(change.Log)).Error; err != nil {
				return fmt.Errorf("create activity log: %w", err)
			}
		}
		if change.Approval != nil {
			if err := tx.Create(models.ApprovalModelFromDomain(change.Approval)).Error; err != nil {
				return fmt.Errorf("create approval: %w", err)
			}
		}
		return nil
	})
}

// ApplyModeration keeps or deletes flagged reviews and logs each decision
func (w *GormReviewWriter) ApplyModeration(ctx context.Context, change editors.ModerationChange) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range change.Decisions {
			switch d.Action {
			case editors.ModerationKeep:
				if err := tx.Where("review_id = ?", d.ReviewID).Delete(&models.ReviewFlagModel{}).Error; err != nil {
					return fmt.Errorf("clear review flags: %w", err)
				}
				if err := tx.Model(&models.ReviewModel{}).Where("id = ?", d.ReviewID).
					Updates(map[string]any{"editor_review": false, "flag": false}).Error; err != nil {
					return fmt.Errorf("keep review: %w", err)
				}
			case editors.ModerationDelete:
				if err := tx.Where("review_id = ?", d.ReviewID).Delete(&models.ReviewFlagModel{}).Error; err != nil {
					return fmt.Errorf("clear review flags: %w", err)
				}
				if err := tx.Where("id = ?", d.ReviewID).Delete(&models.ReviewModel{}).Error; err != nil {
					return fmt.Errorf("delete review: %w", err)
				}
			}
		}
		for _, entry := range change.Logs {
			if err := tx.Create(models.ActivityLogModelFromDomain(entry)).Error; err != nil {
				return fmt.Errorf("create activity log: %w", err)
			}
		}
		return nil
	})
}
