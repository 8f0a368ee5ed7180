package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for uuid-keyed rows
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
