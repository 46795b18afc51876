package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/models"
)

type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Resume, error)
	List(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType, page, limit int) ([]models.Resume, int64, error)
	Count(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType) (int64, error)
	Update(ctx context.Context, resume *models.Resume) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	FindInBatches(ctx context.Context, batchSize int, fn func([]models.Resume) error) error
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	if err := r.db.WithContext(ctx).Create(resume).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

func (r *resumeRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&resume).Error; err != nil {
		return nil, wrapFind(err, "Resume", id.String())
	}
	return &resume, nil
}

func (r *resumeRepository) List(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType, page, limit int) ([]models.Resume, int64, error) {
	var total int64
	if err := r.scoped(ctx, userID, resumeType).Model(&models.Resume{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count resumes: %w", err)
	}

	var resumes []models.Resume
	err := r.scoped(ctx, userID, resumeType).
		Order("updated_at DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&resumes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list resumes: %w", err)
	}

	return resumes, total, nil
}

func (r *resumeRepository) Count(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType) (int64, error) {
	var total int64
	if err := r.scoped(ctx, userID, resumeType).Model(&models.Resume{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count resumes: %w", err)
	}
	return total, nil
}

// Update writes every column of the resume, filtered by id and owner.
func (r *resumeRepository) Update(ctx context.Context, resume *models.Resume) error {
	result := r.db.WithContext(ctx).
		Model(&models.Resume{}).
		Where("id = ? AND user_id = ?", resume.ID, resume.UserID).
		Select("*").
		Omit("id", "user_id", "created_at").
		Updates(resume)

	if result.Error != nil {
		return fmt.Errorf("failed to update resume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Resume", resume.ID.String())
	}
	return nil
}

func (r *resumeRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Resume{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete resume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Resume", id.String())
	}
	return nil
}

// FindInBatches walks every resume of every user; used to rebuild the vector index.
func (r *resumeRepository) FindInBatches(ctx context.Context, batchSize int, fn func([]models.Resume) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	// Offset paging ordered by id visits every row exactly once.
	for offset := 0; ; offset += batchSize {
		var batch []models.Resume
		if err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(batchSize).Find(&batch).Error; err != nil {
			return fmt.Errorf("failed to scan resumes: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}

func (r *resumeRepository) scoped(ctx context.Context, userID uuid.UUID, resumeType models.ResumeType) *gorm.DB {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	switch resumeType {
	case models.ResumeTypeBase:
		q = q.Where("is_base_resume = ?", true)
	case models.ResumeTypeTailored:
		q = q.Where("is_base_resume = ?", false)
	}
	return q
}
