package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/editors"
)

// AddonModel is the persistence model for the Addon domain entity.
type AddonModel struct {
	BaseModel
	Name            string              `gorm:"type:varchar(255);not null"`
	Type            editors.AddonType   `gorm:"not null;default:1"`
	Status          editors.AddonStatus `gorm:"not null;default:0;index"`
	AdminReview     bool                `gorm:"not null;default:false"`
	SiteSpecific    bool                `gorm:"not null;default:false"`
	DisabledByUser  bool                `gorm:"not null;default:false"`
	LatestVersionID *uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (AddonModel) TableName() string {
	return "addons"
}

// ToDomain converts the persistence model to a domain Addon entity.
func (m *AddonModel) ToDomain() *editors.Addon {
	return &editors.Addon{
		BaseEntity:      m.BaseModel.ToDomain(),
		Name:            m.Name,
		Type:            m.Type,
		Status:          m.Status,
		AdminReview:     m.AdminReview,
		SiteSpecific:    m.SiteSpecific,
		DisabledByUser:  m.DisabledByUser,
		LatestVersionID: m.LatestVersionID,
	}
}

// AddonModelFromDomain creates a new persistence model from a domain Addon entity.
func AddonModelFromDomain(a *editors.Addon) *AddonModel {
	m := &AddonModel{
		Name:            a.Name,
		Type:            a.Type,
		Status:          a.Status,
		AdminReview:     a.AdminReview,
		SiteSpecific:    a.SiteSpecific,
		DisabledByUser:  a.DisabledByUser,
		LatestVersionID: a.LatestVersionID,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// AddonAuthorModel links users to the add-ons they develop.
type AddonAuthorModel struct {
	AddonID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (AddonAuthorModel) TableName() string {
	return "addon_authors"
}

// VersionModel is the persistence model for the Version domain entity.
type VersionModel struct {
	BaseModel
	AddonID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Version     string    `gorm:"type:varchar(255);not null"`
	NominatedAt *time.Time
	Files       []FileModel               `gorm:"foreignKey:VersionID"`
	Apps        []VersionApplicationModel `gorm:"foreignKey:VersionID"`
}

// TableName returns the table name for GORM
func (VersionModel) TableName() string {
	return "versions"
}

// ToDomain converts the persistence model, including loaded associations.
func (m *VersionModel) ToDomain() *editors.Version {
	v := &editors.Version{
		BaseEntity:  m.BaseModel.ToDomain(),
		AddonID:     m.AddonID,
		Version:     m.Version,
		NominatedAt: m.NominatedAt,
		Files:       make([]editors.File, 0, len(m.Files)),
		Apps:        make([]editors.VersionApplication, 0, len(m.Apps)),
	}
	for i := range m.Files {
		v.Files = append(v.Files, m.Files[i].ToDomain())
	}
	for _, a := range m.Apps {
		v.Apps = append(v.Apps, editors.VersionApplication{
			ApplicationID: a.ApplicationID,
			MinVersion:    a.MinVersion,
			MaxVersion:    a.MaxVersion,
		})
	}
	return v
}

// FileModel is the persistence model for the File domain entity.
type FileModel struct {
	BaseModel
	VersionID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Platform  editors.Platform    `gorm:"not null;default:1"`
	Filename  string              `gorm:"type:varchar(255);not null"`
	Status    editors.AddonStatus `gorm:"not null;default:1;index"`
}

// TableName returns the table name for GORM
func (FileModel) TableName() string {
	return "files"
}

// ToDomain converts the persistence model to a domain File entity.
func (m *FileModel) ToDomain() editors.File {
	return editors.File{
		BaseEntity: m.BaseModel.ToDomain(),
		VersionID:  m.VersionID,
		Platform:   m.Platform,
		Filename:   m.Filename,
		Status:     m.Status,
	}
}

// VersionApplicationModel records the application range a version supports.
type VersionApplicationModel struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	VersionID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ApplicationID int       `gorm:"not null"`
	MinVersion    string    `gorm:"type:varchar(32);not null"`
	MaxVersion    string    `gorm:"type:varchar(32);not null"`
}

// TableName returns the table name for GORM
func (VersionApplicationModel) TableName() string {
	return "version_applications"
}

// AppVersionModel is a known application release.
type AppVersionModel struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	ApplicationID int    `gorm:"not null;index"`
	Version       string `gorm:"type:varchar(32);not null"`
	VersionInt    int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (AppVersionModel) TableName() string {
	return "app_versions"
}

// ActivityLogModel is the persistence model for the ActivityLog domain entity.
type ActivityLogModel struct {
	ID        uuid.UUID               `gorm:"type:uuid;primary_key"`
	Action    editors.LogAction       `gorm:"not null;index"`
	UserID    uuid.UUID               `gorm:"type:uuid;not null"`
	UserName  string                  `gorm:"type:varchar(255);not null"`
	AddonID   *uuid.UUID              `gorm:"type:uuid;index"`
	AddonName string                  `gorm:"type:varchar(255)"`
	VersionID *uuid.UUID              `gorm:"type:uuid"`
	Version   string                  `gorm:"type:varchar(255)"`
	Details   editors.ActivityDetails `gorm:"type:jsonb;serializer:json"`
	CreatedAt time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ToDomain converts the persistence model to a domain ActivityLog entity.
func (m *ActivityLogModel) ToDomain() editors.ActivityLog {
	return editors.ActivityLog{
		ID:        m.ID,
		Action:    m.Action,
		UserID:    m.UserID,
		UserName:  m.UserName,
		AddonID:   m.AddonID,
		AddonName: m.AddonName,
		VersionID: m.VersionID,
		Version:   m.Version,
		Details:   m.Details,
		CreatedAt: m.CreatedAt,
	}
}

// ActivityLogModelFromDomain creates a new persistence model from a domain ActivityLog entity.
func ActivityLogModelFromDomain(l *editors.ActivityLog) *ActivityLogModel {
	return &ActivityLogModel{
		ID:        l.ID,
		Action:    l.Action,
		UserID:    l.UserID,
		UserName:  l.UserName,
		AddonID:   l.AddonID,
		AddonName: l.AddonName,
		VersionID: l.VersionID,
		Version:   l.Version,
		Details:   l.Details,
		CreatedAt: l.CreatedAt,
	}
}

// ApprovalModel is the persistence model for the Approval domain entity.
type ApprovalModel struct {
	BaseModel
	UserID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	UserName   string              `gorm:"type:varchar(255);not null"`
	AddonID    uuid.UUID           `gorm:"type:uuid;not null"`
	ReviewType editors.ReviewType  `gorm:"type:varchar(20);not null"`
	Action     editors.AddonStatus `gorm:"not null"`
	Comments   string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ApprovalModel) TableName() string {
	return "approvals"
}

// ApprovalModelFromDomain creates a new persistence model from a domain Approval entity.
func ApprovalModelFromDomain(a *editors.Approval) *ApprovalModel {
	m := &ApprovalModel{
		UserID:     a.UserID,
		UserName:   a.UserName,
		AddonID:    a.AddonID,
		ReviewType: a.ReviewType,
		Action:     a.Action,
		Comments:   a.Comments,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// EventLogModel is the persistence model for administrative events.
type EventLogModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Type            string    `gorm:"type:varchar(60);not null"`
	Action          string    `gorm:"type:varchar(120);not null"`
	UserID          uuid.UUID `gorm:"type:uuid;not null"`
	ChangedUserID   uuid.UUID `gorm:"type:uuid;not null"`
	ChangedUserName string    `gorm:"type:varchar(255);not null"`
	CreatedAt       time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (EventLogModel) TableName() string {
	return "event_logs"
}

// ToDomain converts the persistence model to a domain EventLog entity.
func (m *EventLogModel) ToDomain() editors.EventLog {
	return editors.EventLog{
		ID:              m.ID,
		Type:            m.Type,
		Action:          m.Action,
		UserID:          m.UserID,
		ChangedUserID:   m.ChangedUserID,
		ChangedUserName: m.ChangedUserName,
		CreatedAt:       m.CreatedAt,
	}
}

// CannedResponseModel is a prepared review comment.
type CannedResponseModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Name     string    `gorm:"type:varchar(255);not null"`
	Response string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (CannedResponseModel) TableName() string {
	return "canned_responses"
}

// ReviewModel is the persistence model for user reviews.
type ReviewModel struct {
	BaseModel
	AddonID      *uuid.UUID        `gorm:"type:uuid;index"`
	UserID       uuid.UUID         `gorm:"type:uuid;not null"`
	UserName     string            `gorm:"type:varchar(255);not null"`
	Title        string            `gorm:"type:varchar(255)"`
	Body         string            `gorm:"type:text"`
	Rating       int               `gorm:"not null;default:0"`
	EditorReview bool              `gorm:"not null;default:false"`
	Flag         bool              `gorm:"not null;default:false"`
	Addon        *AddonModel       `gorm:"foreignKey:AddonID"`
	Flags        []ReviewFlagModel `gorm:"foreignKey:ReviewID"`
}

// TableName returns the table name for GORM
func (ReviewModel) TableName() string {
	return "reviews"
}

// ToDomain converts the persistence model, including loaded flags.
func (m *ReviewModel) ToDomain() editors.Review {
	r := editors.Review{
		BaseEntity:   m.BaseModel.ToDomain(),
		AddonID:      m.AddonID,
		UserID:       m.UserID,
		UserName:     m.UserName,
		Title:        m.Title,
		Body:         m.Body,
		Rating:       m.Rating,
		EditorReview: m.EditorReview,
		Flag:         m.Flag,
		Flags:        make([]editors.ReviewFlag, 0, len(m.Flags)),
	}
	if m.Addon != nil {
		r.AddonName = m.Addon.Name
	}
	for _, f := range m.Flags {
		r.Flags = append(r.Flags, editors.ReviewFlag{
			ID:        f.ID,
			ReviewID:  f.ReviewID,
			UserID:    f.UserID,
			UserName:  f.UserName,
			Flag:      f.Flag,
			Note:      f.Note,
			CreatedAt: f.CreatedAt,
		})
	}
	return r
}

// ReviewFlagModel is a moderation request against a review.
type ReviewFlagModel struct {
	ID        uuid.UUID          `gorm:"type:uuid;primary_key"`
	ReviewID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID          `gorm:"type:uuid;not null"`
	UserName  string             `gorm:"type:varchar(255);not null"`
	Flag      editors.FlagReason `gorm:"type:varchar(64);not null"`
	Note      string             `gorm:"type:varchar(100)"`
	CreatedAt time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReviewFlagModel) TableName() string {
	return "review_flags"
}

// SiteConfigModel is a key/value site setting.
type SiteConfigModel struct {
	Key   string `gorm:"type:varchar(255);primaryKey"`
	Value string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (SiteConfigModel) TableName() string {
	return "site_configs"
}
