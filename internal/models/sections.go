package models

// Resume and profile sections are stored as JSON columns.

type WorkExperience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location,omitempty"`
	Date         string   `json:"date"`
	Description  []string `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
}

type Education struct {
	School       string   `json:"school"`
	Degree       string   `json:"degree"`
	Field        string   `json:"field"`
	Location     string   `json:"location,omitempty"`
	Date         string   `json:"date"`
	GPA          string   `json:"gpa,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

type Skill struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  []string `json:"description"`
	Date         string   `json:"date,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"`
	GithubURL    string   `json:"github_url,omitempty"`
}

// ContactInfo is the shared personal block of profiles and resumes.
type ContactInfo struct {
	FirstName   string `gorm:"type:text" json:"first_name"`
	LastName    string `gorm:"type:text" json:"last_name"`
	Email       string `gorm:"type:text" json:"email"`
	PhoneNumber string `gorm:"type:text" json:"phone_number"`
	Location    string `gorm:"type:text" json:"location"`
	Website     string `gorm:"type:text" json:"website"`
	LinkedinURL string `gorm:"type:text" json:"linkedin_url"`
	GithubURL   string `gorm:"type:text" json:"github_url"`
}

// ResumeContent is the part of a resume the AI is allowed to rewrite.
type ResumeContent struct {
	TargetRole     string           `json:"target_role"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Education      []Education      `json:"education"`
	Skills         []Skill          `json:"skills"`
	Projects       []Project        `json:"projects"`
}

// Normalize replaces nil sections with empty slices so they serialize as [].
func (c *ResumeContent) Normalize() {
	if c.WorkExperience == nil {
		c.WorkExperience = []WorkExperience{}
	}
	if c.Education == nil {
		c.Education = []Education{}
	}
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	if c.Projects == nil {
		c.Projects = []Project{}
	}
}
