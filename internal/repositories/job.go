package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/models"
)

type JobFilter struct {
	WorkLocation   string
	EmploymentType string
	Page           int
	Limit          int
}

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Job, error)
	List(ctx context.Context, userID uuid.UUID, filter JobFilter) ([]models.Job, int64, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&job).Error; err != nil {
		return nil, wrapFind(err, "Job", id.String())
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, userID uuid.UUID, filter JobFilter) ([]models.Job, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Job{}).Where("user_id = ?", userID)
		if filter.WorkLocation != "" {
			q = q.Where("work_location = ?", filter.WorkLocation)
		}
		if filter.EmploymentType != "" {
			q = q.Where("employment_type = ?", filter.EmploymentType)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	var jobs []models.Job
	err := scoped().Order("created_at DESC").
		Offset(offset(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, total, nil
}

func (r *jobRepository) Update(ctx context.Context, job *models.Job) error {
	result := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ? AND user_id = ?", job.ID, job.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(job)

	if result.Error != nil {
		return fmt.Errorf("failed to update job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Job", job.ID.String())
	}
	return nil
}

func (r *jobRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Job{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Job", id.String())
	}
	return nil
}
