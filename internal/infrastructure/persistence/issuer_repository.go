package persistence

import (
	"context"
	"errors"

	"github.com/marketplace/backend/internal/domain/payment"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormIssuerRepository implements payment.IssuerRepository using GORM
type GormIssuerRepository struct {
	db *gorm.DB
}

// NewGormIssuerRepository creates a new GormIssuerRepository
func NewGormIssuerRepository(db *gorm.DB) *GormIssuerRepository {
	return &GormIssuerRepository{db: db}
}

// FindByKey finds an active issuer by its key
func (r *GormIssuerRepository) FindByKey(ctx context.Context, key string) (*payment.Issuer, error) {
	var model models.IssuerModel
	if err := r.db.WithContext(ctx).
		Where("key = ? AND active = ?", key, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
