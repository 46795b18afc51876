package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a user-supplied provider key, e.g. {"service":"anthropic","key":"sk-..."}.
type APIKey struct {
	Service string `json:"service" validate:"required"`
	Key     string `json:"key" validate:"required"`
}

// AIRequestConfig lets the caller pick a model and bring their own keys.
type AIRequestConfig struct {
	Model   string   `json:"model"`
	APIKeys []APIKey `json:"apiKeys" validate:"omitempty,dive"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AuthResponse struct {
	User         *User    `json:"user"`
	Session      *Session `json:"session"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

type MeResponse struct {
	User         *User         `json:"user"`
	Profile      *Profile      `json:"profile"`
	Subscription *Subscription `json:"subscription"`
}

type ImportOption string

const (
	ImportFromProfile ImportOption = "import-profile"
	ImportFresh       ImportOption = "fresh"
	ImportFromResume  ImportOption = "import-resume"
)

// SelectedContent carries the sections (and optionally contact details) chosen for a new base resume.
type SelectedContent struct {
	ContactInfo
	WorkExperience []WorkExperience `json:"work_experience"`
	Education      []Education      `json:"education"`
	Skills         []Skill          `json:"skills"`
	Projects       []Project        `json:"projects"`
}

type CreateResumeRequest struct {
	Name            string           `json:"name" validate:"required"`
	TargetRole      string           `json:"target_role"`
	ImportOption    ImportOption     `json:"importOption" validate:"omitempty,oneof=import-profile fresh import-resume"`
	SelectedContent *SelectedContent `json:"selectedContent"`
}

// UpdateResumeRequest is a partial update; nil fields are left untouched.
type UpdateResumeRequest struct {
	Name             *string          `json:"name"`
	TargetRole       *string          `json:"target_role"`
	FirstName        *string          `json:"first_name"`
	LastName         *string          `json:"last_name"`
	Email            *string          `json:"email"`
	PhoneNumber      *string          `json:"phone_number"`
	Location         *string          `json:"location"`
	Website          *string          `json:"website"`
	LinkedinURL      *string          `json:"linkedin_url"`
	GithubURL        *string          `json:"github_url"`
	WorkExperience   []WorkExperience `json:"work_experience"`
	Education        []Education      `json:"education"`
	Skills           []Skill          `json:"skills"`
	Projects         []Project        `json:"projects"`
	SectionOrder     []string         `json:"section_order"`
	SectionConfigs   *map[string]any  `json:"section_configs"`
	DocumentSettings *map[string]any  `json:"document_settings"`
}

type CreateJobRequest struct {
	CompanyName    string   `json:"company_name" validate:"required"`
	PositionTitle  string   `json:"position_title" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	JobURL         string   `json:"job_url" validate:"omitempty,url"`
	Location       string   `json:"location"`
	SalaryRange    string   `json:"salary_range"`
	Keywords       []string `json:"keywords"`
	Requirements   []string `json:"requirements"`
	WorkLocation   string   `json:"work_location" validate:"omitempty,oneof=remote in_person hybrid"`
	EmploymentType string   `json:"employment_type" validate:"omitempty,oneof=full_time part_time co_op internship"`
}

type UpdateJobRequest struct {
	CompanyName    *string  `json:"company_name"`
	PositionTitle  *string  `json:"position_title"`
	Description    *string  `json:"description"`
	JobURL         *string  `json:"job_url" validate:"omitempty,url"`
	Location       *string  `json:"location"`
	SalaryRange    *string  `json:"salary_range"`
	Keywords       []string `json:"keywords"`
	Requirements   []string `json:"requirements"`
	WorkLocation   *string  `json:"work_location" validate:"omitempty,oneof=remote in_person hybrid"`
	EmploymentType *string  `json:"employment_type" validate:"omitempty,oneof=full_time part_time co_op internship"`
	IsActive       *bool    `json:"is_active"`
}

type FormatJobRequest struct {
	Listing string           `json:"listing" validate:"required,min=20"`
	Save    bool             `json:"save"`
	Config  *AIRequestConfig `json:"config"`
}

type ScoreRequest struct {
	Config *AIRequestConfig `json:"config"`
}

type TailorRequest struct {
	BaseResumeID  string           `json:"base_resume_id" validate:"required,uuid"`
	JobID         string           `json:"job_id" validate:"required,uuid"`
	Config        *AIRequestConfig `json:"config"`
	GenerateScore bool             `json:"generate_score"`
}

type TailorResponse struct {
	Resume *Resume      `json:"resume"`
	Score  *ResumeScore `json:"score,omitempty"`
}

type OptimizeRequest struct {
	BaseResumeID  string           `json:"base_resume_id" validate:"required,uuid"`
	JobID         string           `json:"job_id" validate:"required,uuid"`
	TargetScore   *float64         `json:"target_score" validate:"omitempty,gte=0,lte=100"`
	MaxIterations *int             `json:"max_iterations" validate:"omitempty,gte=1,lte=10"`
	Config        *AIRequestConfig `json:"config"`
}

type OptimizationHistory struct {
	Iteration int       `json:"iteration"`
	Score     float64   `json:"score"`
	Changes   []string  `json:"changes"`
	Timestamp time.Time `json:"timestamp"`
}

type OptimizeResponse struct {
	Resume              *Resume               `json:"resume"`
	Score               *ResumeScore          `json:"score"`
	Iterations          int                   `json:"iterations"`
	TargetAchieved      bool                  `json:"target_achieved"`
	OptimizationHistory []OptimizationHistory `json:"optimization_history"`
}

type ChatRequest struct {
	ResumeID string           `json:"resume_id" validate:"required,uuid"`
	Message  string           `json:"message" validate:"required"`
	JobID    string           `json:"job_id" validate:"omitempty,uuid"`
	Config   *AIRequestConfig `json:"config"`
}

type ChatChange struct {
	Section     string `json:"section"`
	Description string `json:"description"`
}

type ChatResponse struct {
	Resume         *Resume      `json:"resume"`
	Message        string       `json:"message"`
	ChangesApplied []ChatChange `json:"changes_applied"`
}

type CoverLetterRequest struct {
	ResumeID string           `json:"resume_id" validate:"required,uuid"`
	JobID    string           `json:"job_id" validate:"required,uuid"`
	Tone     string           `json:"tone" validate:"omitempty,oneof=professional enthusiastic creative formal"`
	Length   string           `json:"length" validate:"omitempty,oneof=short medium long"`
	Config   *AIRequestConfig `json:"config"`
}

type CoverLetterResponse struct {
	CoverLetter string    `json:"cover_letter"`
	ResumeID    uuid.UUID `json:"resume_id"`
	JobID       uuid.UUID `json:"job_id"`
}

type UpdateProfileRequest struct {
	FirstName      *string          `json:"first_name"`
	LastName       *string          `json:"last_name"`
	Email          *string          `json:"email" validate:"omitempty,email"`
	PhoneNumber    *string          `json:"phone_number"`
	Location       *string          `json:"location"`
	Website        *string          `json:"website"`
	LinkedinURL    *string          `json:"linkedin_url"`
	GithubURL      *string          `json:"github_url"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Education      []Education      `json:"education"`
	Skills         []Skill          `json:"skills"`
	Projects       []Project        `json:"projects"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination derives page counts from a total row count.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

type JobListResponse struct {
	Jobs        []Job `json:"jobs"`
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
}

type ResumeMatch struct {
	Resume *Resume `json:"resume"`
	Score  float32 `json:"score"`
}

type URLResponse struct {
	URL string `json:"url"`
}
