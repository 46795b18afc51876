package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	reindexBatchSize = 50
)

type ResumeService interface {
	CreateBase(ctx context.Context, userID uuid.UUID, req models.CreateResumeRequest) (*models.Resume, error)
	CreateTailored(ctx context.Context, base *models.Resume, job *models.Job, content models.ResumeContent) (*models.Resume, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*models.Resume, *models.Job, error)
	List(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType, page, limit int) ([]models.Resume, models.Pagination, error)
	Count(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType) (int64, error)
	Update(ctx context.Context, id, userID uuid.UUID, req models.UpdateResumeRequest) (*models.Resume, error)
	Save(ctx context.Context, resume *models.Resume) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Copy(ctx context.Context, id, userID uuid.UUID) (*models.Resume, error)
	Reindex(ctx context.Context) (int, error)
}

type resumeService struct {
	resumes  repositories.ResumeRepository
	jobs     repositories.JobRepository
	profiles repositories.ProfileRepository
	index    ResumeIndex
	log      *slog.Logger
}

func NewResumeService(
	resumes repositories.ResumeRepository,
	jobs repositories.JobRepository,
	profiles repositories.ProfileRepository,
	index ResumeIndex,
	log *slog.Logger,
) ResumeService {
	return &resumeService{
		resumes:  resumes,
		jobs:     jobs,
		profiles: profiles,
		index:    index,
		log:      log,
	}
}

func (s *resumeService) CreateBase(ctx context.Context, userID uuid.UUID, req models.CreateResumeRequest) (*models.Resume, error) {
	resume := &models.Resume{
		UserID:       userID,
		Name:         req.Name,
		TargetRole:   req.TargetRole,
		IsBaseResume: true,
		SectionOrder: models.DefaultSectionOrder,
	}

	option := req.ImportOption
	if option == "" {
		option = models.ImportFromProfile
	}

	switch option {
	case models.ImportFromProfile:
		profile, err := s.profiles.FindByUserID(ctx, userID)
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
		if profile != nil {
			resume.ContactInfo = profile.ContactInfo
		}
		if req.SelectedContent != nil {
			applySelected(resume, req.SelectedContent, false)
		}
	case models.ImportFromResume:
		if req.SelectedContent != nil {
			applySelected(resume, req.SelectedContent, true)
		}
	case models.ImportFresh:
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown import option %q", option), nil)
	}

	resume.ApplyContent(resume.Content())
	resume.SectionConfigs = defaultSectionConfigs(resume)
	resume.DocumentSettings = datatypes.JSON(models.DefaultDocumentSettings)

	if err := s.resumes.Create(ctx, resume); err != nil {
		return nil, err
	}

	s.indexResume(ctx, resume)
	return resume, nil
}

func applySelected(resume *models.Resume, sel *models.SelectedContent, withContact bool) {
	if withContact {
		resume.ContactInfo = sel.ContactInfo
	}
	resume.WorkExperience = sel.WorkExperience
	resume.Education = sel.Education
	resume.Skills = sel.Skills
	resume.Projects = sel.Projects
}

// defaultSectionConfigs shows a section only when it has entries.
func defaultSectionConfigs(resume *models.Resume) datatypes.JSON {
	configs := map[string]map[string]bool{
		"work_experience": {"visible": len(resume.WorkExperience) > 0},
		"education":       {"visible": len(resume.Education) > 0},
		"skills":          {"visible": len(resume.Skills) > 0},
		"projects":        {"visible": len(resume.Projects) > 0},
	}
	raw, _ := json.Marshal(configs)
	return datatypes.JSON(raw)
}

func (s *resumeService) CreateTailored(ctx context.Context, base *models.Resume, job *models.Job, content models.ResumeContent) (*models.Resume, error) {
	title := fmt.Sprintf("%s at %s", job.PositionTitle, job.CompanyName)
	jobID := job.ID

	resume := &models.Resume{
		UserID:           base.UserID,
		JobID:            &jobID,
		Name:             title,
		ResumeTitle:      title,
		IsBaseResume:     false,
		TargetRole:       base.TargetRole,
		ContactInfo:      base.ContactInfo,
		SectionOrder:     base.SectionOrder,
		SectionConfigs:   base.SectionConfigs,
		DocumentSettings: base.DocumentSettings,
	}
	resume.ApplyContent(content)

	if err := s.resumes.Create(ctx, resume); err != nil {
		return nil, err
	}

	s.indexResume(ctx, resume)
	return resume, nil
}

// Get returns the resume and, for tailored resumes, the job it targets when that job still exists.
func (s *resumeService) Get(ctx context.Context, id, userID uuid.UUID) (*models.Resume, *models.Job, error) {
	resume, err := s.resumes.FindByID(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}

	if resume.JobID == nil {
		return resume, nil, nil
	}

	job, err := s.jobs.FindByID(ctx, *resume.JobID, userID)
	if err != nil {
		s.log.WarnContext(ctx, "failed to load job for resume", "resume_id", id, "job_id", *resume.JobID, "error", err)
		return resume, nil, nil
	}
	return resume, job, nil
}

func (s *resumeService) List(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType, page, limit int) ([]models.Resume, models.Pagination, error) {
	page, limit = normalizePage(page, limit)
	if resumeType == "" {
		resumeType = models.ResumeTypeAll
	}

	resumes, total, err := s.resumes.List(ctx, userID, resumeType, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	if resumes == nil {
		resumes = []models.Resume{}
	}
	return resumes, models.NewPagination(page, limit, total), nil
}

func (s *resumeService) Count(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType) (int64, error) {
	if resumeType == "" {
		resumeType = models.ResumeTypeAll
	}
	return s.resumes.Count(ctx, userID, resumeType)
}

func (s *resumeService) Update(ctx context.Context, id, userID uuid.UUID, req models.UpdateResumeRequest) (*models.Resume, error) {
	resume, err := s.resumes.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	setString(&resume.Name, req.Name)
	setString(&resume.TargetRole, req.TargetRole)
	setString(&resume.FirstName, req.FirstName)
	setString(&resume.LastName, req.LastName)
	setString(&resume.Email, req.Email)
	setString(&resume.PhoneNumber, req.PhoneNumber)
	setString(&resume.Location, req.Location)
	setString(&resume.Website, req.Website)
	setString(&resume.LinkedinURL, req.LinkedinURL)
	setString(&resume.GithubURL, req.GithubURL)

	if req.WorkExperience != nil {
		resume.WorkExperience = req.WorkExperience
	}
	if req.Education != nil {
		resume.Education = req.Education
	}
	if req.Skills != nil {
		resume.Skills = req.Skills
	}
	if req.Projects != nil {
		resume.Projects = req.Projects
	}
	if req.SectionOrder != nil {
		resume.SectionOrder = req.SectionOrder
	}
	if req.SectionConfigs != nil {
		raw, err := json.Marshal(*req.SectionConfigs)
		if err != nil {
			return nil, apperrors.Validation("invalid section_configs", nil)
		}
		resume.SectionConfigs = datatypes.JSON(raw)
	}
	if req.DocumentSettings != nil {
		raw, err := json.Marshal(*req.DocumentSettings)
		if err != nil {
			return nil, apperrors.Validation("invalid document_settings", nil)
		}
		resume.DocumentSettings = datatypes.JSON(raw)
	}

	if err := s.Save(ctx, resume); err != nil {
		return nil, err
	}
	return resume, nil
}

// Save persists a modified resume row and refreshes its embedding.
func (s *resumeService) Save(ctx context.Context, resume *models.Resume) error {
	if err := s.resumes.Update(ctx, resume); err != nil {
		return err
	}
	s.indexResume(ctx, resume)
	return nil
}

func (s *resumeService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	resume, err := s.resumes.FindByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.resumes.Delete(ctx, id, userID); err != nil {
		return err
	}

	if !resume.IsBaseResume && resume.JobID != nil {
		if err := s.jobs.Delete(ctx, *resume.JobID, userID); err != nil {
			s.log.WarnContext(ctx, "failed to delete job of tailored resume", "resume_id", id, "job_id", *resume.JobID, "error", err)
		}
	}

	if err := s.index.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "failed to remove resume from index", "resume_id", id, "error", err)
	}
	return nil
}

func (s *resumeService) Copy(ctx context.Context, id, userID uuid.UUID) (*models.Resume, error) {
	source, err := s.resumes.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	dup := *source
	dup.ID = uuid.Nil
	dup.Name = source.Name + " (Copy)"
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}

	if err := s.resumes.Create(ctx, &dup); err != nil {
		return nil, err
	}

	s.indexResume(ctx, &dup)
	return &dup, nil
}

// Reindex rebuilds the vector index from every stored resume.
func (s *resumeService) Reindex(ctx context.Context) (int, error) {
	if !s.index.Enabled() {
		return 0, fmt.Errorf("vector index is not configured")
	}
	if err := s.index.InitCollection(ctx); err != nil {
		return 0, err
	}

	count := 0
	err := s.resumes.FindInBatches(ctx, reindexBatchSize, func(batch []models.Resume) error {
		for i := range batch {
			if err := s.index.Upsert(ctx, &batch[i]); err != nil {
				return fmt.Errorf("resume %s: %w", batch[i].ID, err)
			}
			count++
		}
		s.log.InfoContext(ctx, "reindexed batch", "indexed", count)
		return nil
	})
	return count, err
}

func (s *resumeService) indexResume(ctx context.Context, resume *models.Resume) {
	if err := s.index.Upsert(ctx, resume); err != nil {
		s.log.WarnContext(ctx, "failed to index resume", "resume_id", resume.ID, "error", err)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
