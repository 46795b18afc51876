package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkLocation string

const (
	WorkLocationRemote   WorkLocation = "remote"
	WorkLocationInPerson WorkLocation = "in_person"
	WorkLocationHybrid   WorkLocation = "hybrid"
)

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentCoOp       EmploymentType = "co_op"
	EmploymentInternship EmploymentType = "internship"
)

type Job struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	CompanyName    string          `gorm:"type:text;not null" json:"company_name"`
	PositionTitle  string          `gorm:"type:text;not null" json:"position_title"`
	JobURL         string          `gorm:"type:text" json:"job_url"`
	Description    string          `gorm:"type:text" json:"description"`
	Location       string          `gorm:"type:text" json:"location"`
	SalaryRange    string          `gorm:"type:text" json:"salary_range"`
	Keywords       []string        `gorm:"serializer:json" json:"keywords"`
	Requirements   []string        `gorm:"serializer:json" json:"requirements"`
	WorkLocation   *WorkLocation   `gorm:"type:text" json:"work_location"`
	EmploymentType *EmploymentType `gorm:"type:text" json:"employment_type"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	assignID(&j.ID)
	return nil
}

// JobListing is the structured shape the AI extracts from raw job text.
type JobListing struct {
	CompanyName    string   `json:"company_name"`
	PositionTitle  string   `json:"position_title"`
	JobURL         string   `json:"job_url"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	SalaryRange    string   `json:"salary_range"`
	Keywords       []string `json:"keywords"`
	Requirements   []string `json:"requirements"`
	WorkLocation   string   `json:"work_location"`
	EmploymentType string   `json:"employment_type"`
}

// Listing projects a stored job onto the shape sent to the AI.
func (j *Job) Listing() JobListing {
	l := JobListing{
		CompanyName:   j.CompanyName,
		PositionTitle: j.PositionTitle,
		JobURL:        j.JobURL,
		Description:   j.Description,
		Location:      j.Location,
		SalaryRange:   j.SalaryRange,
		Keywords:      j.Keywords,
		Requirements:  j.Requirements,
	}
	if l.Keywords == nil {
		l.Keywords = []string{}
	}
	if l.Requirements == nil {
		l.Requirements = []string{}
	}
	if j.WorkLocation != nil {
		l.WorkLocation = string(*j.WorkLocation)
	}
	if j.EmploymentType != nil {
		l.EmploymentType = string(*j.EmploymentType)
	}
	return l
}
