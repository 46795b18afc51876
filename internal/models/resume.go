package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResumeType string

const (
	ResumeTypeBase     ResumeType = "base"
	ResumeTypeTailored ResumeType = "tailored"
	ResumeTypeAll      ResumeType = "all"
)

type Resume struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	JobID        *uuid.UUID `gorm:"type:uuid;index" json:"job_id"`
	Name         string     `gorm:"type:text;not null" json:"name"`
	ResumeTitle  string     `gorm:"type:text" json:"resume_title,omitempty"`
	IsBaseResume bool       `gorm:"not null;default:false;index" json:"is_base_resume"`
	TargetRole   string     `gorm:"type:text" json:"target_role"`
	ContactInfo
	WorkExperience   []WorkExperience `gorm:"serializer:json" json:"work_experience"`
	Education        []Education      `gorm:"serializer:json" json:"education"`
	Skills           []Skill          `gorm:"serializer:json" json:"skills"`
	Projects         []Project        `gorm:"serializer:json" json:"projects"`
	SectionOrder     []string         `gorm:"serializer:json" json:"section_order"`
	SectionConfigs   datatypes.JSON   `json:"section_configs"`
	DocumentSettings datatypes.JSON   `json:"document_settings"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Resume) TableName() string {
	return "resumes"
}

func (r *Resume) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// Content extracts the AI-editable sections.
func (r *Resume) Content() ResumeContent {
	c := ResumeContent{
		TargetRole:     r.TargetRole,
		WorkExperience: r.WorkExperience,
		Education:      r.Education,
		Skills:         r.Skills,
		Projects:       r.Projects,
	}
	c.Normalize()
	return c
}

// ApplyContent overwrites the AI-editable sections. An empty target role keeps the current one.
func (r *Resume) ApplyContent(c ResumeContent) {
	c.Normalize()
	if c.TargetRole != "" {
		r.TargetRole = c.TargetRole
	}
	r.WorkExperience = c.WorkExperience
	r.Education = c.Education
	r.Skills = c.Skills
	r.Projects = c.Projects
}

// DefaultSectionOrder is the order new base resumes start with.
var DefaultSectionOrder = []string{"work_experience", "education", "skills", "projects"}

// DefaultDocumentSettings mirrors the editor's initial layout.
const DefaultDocumentSettings = `{"footer_width":0,"show_ubc_footer":false,"header_name_size":24,` +
	`"skills_margin_top":0,"document_font_size":10,"projects_margin_top":0,"skills_item_spacing":0,` +
	`"document_line_height":1.2,"education_margin_top":0,"skills_margin_bottom":2,"experience_margin_top":2,` +
	`"projects_item_spacing":0,"education_item_spacing":0,"projects_margin_bottom":0,"education_margin_bottom":0,` +
	`"experience_item_spacing":1,"document_margin_vertical":20,"experience_margin_bottom":0,` +
	`"skills_margin_horizontal":0,"document_margin_horizontal":28,"header_name_bottom_spacing":16,` +
	`"projects_margin_horizontal":0,"education_margin_horizontal":0,"experience_margin_horizontal":0}`
