package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements editors.ActivityLogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

func (r *GormActivityLogRepository) applyFilter(query *gorm.DB, filter editors.ActivityFilter) *gorm.DB {
	if len(filter.Actions) > 0 {
		query = query.Where("action IN ?", filter.Actions)
	}
	if filter.Start != nil {
		query = query.Where("created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("created_at < ?", *filter.End)
	}
	if filter.AddonID != nil {
		query = query.Where("addon_id = ?", *filter.AddonID)
	}
	return query
}

// List returns activity entries newest first together with the total count
func (r *GormActivityLogRepository) List(ctx context.Context, filter editors.ActivityFilter, page shared.PageRequest) ([]editors.ActivityLog, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActivityLogModel{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ActivityLogModel
	if err := query.Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toActivityLogs(rows), total, nil
}

// FindByID finds an activity entry whose action is one of actions
func (r *GormActivityLogRepository) FindByID(ctx context.Context, id uuid.UUID, actions []editors.LogAction) (*editors.ActivityLog, error) {
	var model models.ActivityLogModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND action IN ?", id, actions).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	entry := model.ToDomain()
	return &entry, nil
}

// Latest returns the newest entries with one of actions
func (r *GormActivityLogRepository) Latest(ctx context.Context, actions []editors.LogAction, limit int) ([]editors.ActivityLog, error) {
	var rows []models.ActivityLogModel
	if err := r.db.WithContext(ctx).
		Where("action IN ?", actions).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toActivityLogs(rows), nil
}

func toActivityLogs(rows []models.ActivityLogModel) []editors.ActivityLog {
	out := make([]editors.ActivityLog, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// GormApprovalRepository implements editors.ApprovalRepository using GORM
type GormApprovalRepository struct {
	db *gorm.DB
}

// NewGormApprovalRepository creates a new GormApprovalRepository
func NewGormApprovalRepository(db *gorm.DB) *GormApprovalRepository {
	return &GormApprovalRepository{db: db}
}

// TopReviewers ranks reviewers by number of approvals
func (r *GormApprovalRepository) TopReviewers(ctx context.Context, since *time.Time, limit int) ([]editors.ReviewerStat, error) {
	query := r.db.WithContext(ctx).Model(&models.ApprovalModel{}).
		Select("user_id, user_name, COUNT(*) AS approval_count")
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	stats := []editors.ReviewerStat{}
	if err := query.Group("user_id, user_name").
		Order("approval_count DESC, user_name ASC").
		Limit(limit).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// GormEventLogRepository implements editors.EventLogRepository using GORM
type GormEventLogRepository struct {
	db *gorm.DB
}

// NewGormEventLogRepository creates a new GormEventLogRepository
func NewGormEventLogRepository(db *gorm.DB) *GormEventLogRepository {
	return &GormEventLogRepository{db: db}
}

// NewEditors returns the latest additions to the editors group
func (r *GormEventLogRepository) NewEditors(ctx context.Context, limit int) ([]editors.EventLog, error) {
	var rows []models.EventLogModel
	if err := r.db.WithContext(ctx).
		Where("type = ? AND action = ?", editors.EventTypeAdmin, editors.EventActionGroupAddUser).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]editors.EventLog, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}
