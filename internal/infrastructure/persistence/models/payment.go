package models

import (
	"github.com/marketplace/backend/internal/domain/payment"
)

// IssuerModel is a registered in-app payment issuer.
type IssuerModel struct {
	BaseModel
	Key    string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Secret string `gorm:"type:varchar(255);not null"`
	Name   string `gorm:"type:varchar(255)"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (IssuerModel) TableName() string {
	return "issuers"
}

// ToDomain converts the persistence model to a domain Issuer entity.
func (m *IssuerModel) ToDomain() *payment.Issuer {
	return &payment.Issuer{
		BaseEntity: m.BaseModel.ToDomain(),
		Key:        m.Key,
		Secret:     m.Secret,
		Name:       m.Name,
		Active:     m.Active,
	}
}

// AllModels lists every model in migration order.
func AllModels() []any {
	return []any{
		&AddonModel{},
		&AddonAuthorModel{},
		&VersionModel{},
		&FileModel{},
		&VersionApplicationModel{},
		&AppVersionModel{},
		&ActivityLogModel{},
		&ApprovalModel{},
		&EventLogModel{},
		&CannedResponseModel{},
		&ReviewModel{},
		&ReviewFlagModel{},
		&SiteConfigModel{},
		&IssuerModel{},
	}
}
