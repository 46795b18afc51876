package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

const matchingResumeLimit = 10

type JobService interface {
	Create(ctx context.Context, userID uuid.UUID, req models.CreateJobRequest) (*models.Job, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*models.Job, error)
	List(ctx context.Context, userID uuid.UUID, filter repositories.JobFilter) (*models.JobListResponse, error)
	Update(ctx context.Context, id, userID uuid.UUID, req models.UpdateJobRequest) (*models.Job, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	Format(ctx context.Context, userID uuid.UUID, ai AIRequest, req models.FormatJobRequest) (*models.JobListing, *models.Job, error)
	MatchingResumes(ctx context.Context, id, userID uuid.UUID) ([]models.ResumeMatch, error)
}

type jobService struct {
	jobs    repositories.JobRepository
	resumes repositories.ResumeRepository
	ai      AIService
	index   ResumeIndex
	log     *slog.Logger
}

func NewJobService(
	jobs repositories.JobRepository,
	resumes repositories.ResumeRepository,
	ai AIService,
	index ResumeIndex,
	log *slog.Logger,
) JobService {
	return &jobService{jobs: jobs, resumes: resumes, ai: ai, index: index, log: log}
}

func (s *jobService) Create(ctx context.Context, userID uuid.UUID, req models.CreateJobRequest) (*models.Job, error) {
	job := &models.Job{
		UserID:         userID,
		CompanyName:    req.CompanyName,
		PositionTitle:  req.PositionTitle,
		JobURL:         req.JobURL,
		Description:    req.Description,
		Location:       req.Location,
		SalaryRange:    req.SalaryRange,
		Keywords:       req.Keywords,
		Requirements:   req.Requirements,
		WorkLocation:   workLocation(req.WorkLocation),
		EmploymentType: employmentType(req.EmploymentType),
		IsActive:       true,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) Get(ctx context.Context, id, userID uuid.UUID) (*models.Job, error) {
	return s.jobs.FindByID(ctx, id, userID)
}

func (s *jobService) List(ctx context.Context, userID uuid.UUID, filter repositories.JobFilter) (*models.JobListResponse, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	jobs, total, err := s.jobs.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	p := models.NewPagination(filter.Page, filter.Limit, total)
	return &models.JobListResponse{
		Jobs:        jobs,
		TotalCount:  total,
		CurrentPage: p.Page,
		TotalPages:  p.TotalPages,
	}, nil
}

func (s *jobService) Update(ctx context.Context, id, userID uuid.UUID, req models.UpdateJobRequest) (*models.Job, error) {
	job, err := s.jobs.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	setString(&job.CompanyName, req.CompanyName)
	setString(&job.PositionTitle, req.PositionTitle)
	setString(&job.Description, req.Description)
	setString(&job.JobURL, req.JobURL)
	setString(&job.Location, req.Location)
	setString(&job.SalaryRange, req.SalaryRange)
	if req.Keywords != nil {
		job.Keywords = req.Keywords
	}
	if req.Requirements != nil {
		job.Requirements = req.Requirements
	}
	if req.WorkLocation != nil {
		job.WorkLocation = workLocation(*req.WorkLocation)
	}
	if req.EmploymentType != nil {
		job.EmploymentType = employmentType(*req.EmploymentType)
	}
	if req.IsActive != nil {
		job.IsActive = *req.IsActive
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.jobs.Delete(ctx, id, userID)
}

// Format structures raw listing text; the job row is only written when req.Save is set.
func (s *jobService) Format(ctx context.Context, userID uuid.UUID, ai AIRequest, req models.FormatJobRequest) (*models.JobListing, *models.Job, error) {
	listing, err := s.ai.FormatJobListing(ctx, ai, req.Listing)
	if err != nil {
		return nil, nil, err
	}
	if !req.Save {
		return listing, nil, nil
	}

	job := &models.Job{
		UserID:         userID,
		CompanyName:    listing.CompanyName,
		PositionTitle:  listing.PositionTitle,
		JobURL:         listing.JobURL,
		Description:    listing.Description,
		Location:       listing.Location,
		SalaryRange:    listing.SalaryRange,
		Keywords:       listing.Keywords,
		Requirements:   listing.Requirements,
		WorkLocation:   workLocation(listing.WorkLocation),
		EmploymentType: employmentType(listing.EmploymentType),
		IsActive:       true,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, nil, err
	}
	return listing, job, nil
}

// MatchingResumes ranks the user's base resumes against the job description.
// Without a vector index the most recently updated base resumes are returned unscored.
func (s *jobService) MatchingResumes(ctx context.Context, id, userID uuid.UUID) ([]models.ResumeMatch, error) {
	job, err := s.jobs.FindByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	matches := []models.ResumeMatch{}

	if !s.index.Enabled() {
		resumes, _, err := s.resumes.List(ctx, userID, models.ResumeTypeBase, 1, matchingResumeLimit)
		if err != nil {
			return nil, err
		}
		for i := range resumes {
			matches = append(matches, models.ResumeMatch{Resume: &resumes[i]})
		}
		return matches, nil
	}

	query := job.PositionTitle + "\n" + job.Description
	results, err := s.index.Search(ctx, userID, query, matchingResumeLimit*2)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if !r.IsBaseResume {
			continue
		}
		resume, err := s.resumes.FindByID(ctx, r.ResumeID, userID)
		if err != nil {
			s.log.WarnContext(ctx, "indexed resume not found", "resume_id", r.ResumeID, "error", err)
			continue
		}
		matches = append(matches, models.ResumeMatch{Resume: resume, Score: r.Score})
		if len(matches) == matchingResumeLimit {
			break
		}
	}
	return matches, nil
}

func workLocation(v string) *models.WorkLocation {
	switch wl := models.WorkLocation(v); wl {
	case models.WorkLocationRemote, models.WorkLocationInPerson, models.WorkLocationHybrid:
		return &wl
	}
	return nil
}

func employmentType(v string) *models.EmploymentType {
	switch et := models.EmploymentType(v); et {
	case models.EmploymentFullTime, models.EmploymentPartTime, models.EmploymentCoOp, models.EmploymentInternship:
		return &et
	}
	return nil
}
