package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ContactInfo
	WorkExperience []WorkExperience `gorm:"serializer:json" json:"work_experience"`
	Education      []Education      `gorm:"serializer:json" json:"education"`
	Skills         []Skill          `gorm:"serializer:json" json:"skills"`
	Projects       []Project        `gorm:"serializer:json" json:"projects"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
