package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemSetting is a persisted key/value setting that can be edited at
// runtime (e.g. the description-improver endpoint).
type SystemSetting struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key       string    `gorm:"uniqueIndex;not null"`
	Value     string    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *SystemSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
