package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/models"
)

// ImportService turns an uploaded PDF or DOCX resume into a new base resume.
type ImportService interface {
	Import(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader, name string, cfg *models.AIRequestConfig) (*models.Resume, error)
}

type importService struct {
	storage     StorageService
	parser      DocumentParser
	ai          AIService
	plans       PlanService
	resumes     ResumeService
	maxFileSize int64
	log         *slog.Logger
}

func NewImportService(
	storage StorageService,
	parser DocumentParser,
	ai AIService,
	plans PlanService,
	resumes ResumeService,
	maxFileSize int64,
	log *slog.Logger,
) ImportService {
	return &importService{
		storage:     storage,
		parser:      parser,
		ai:          ai,
		plans:       plans,
		resumes:     resumes,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

func (s *importService) Import(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader, name string, cfg *models.AIRequestConfig) (*models.Resume, error) {
	if file.Size > s.maxFileSize {
		return nil, apperrors.Validation(
			fmt.Sprintf("file too large, max size is %d MB", s.maxFileSize/(1024*1024)),
			map[string]string{"file": "exceeds maximum size"},
		)
	}

	stored, err := s.storage.SaveUpload(ctx, file, "imports/"+userID.String())
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "resume upload stored", "key", stored.Key, "name", stored.OriginalName)

	text, err := s.parser.ExtractText(stored.ContentType, stored.Data)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("no text content found in %s", stored.OriginalName)
	}
	if err != nil {
		if delErr := s.storage.Delete(ctx, stored.Key); delErr != nil {
			s.log.WarnContext(ctx, "failed to remove unreadable upload", "key", stored.Key, "error", delErr)
		}
		return nil, apperrors.Validation(err.Error(), map[string]string{"file": "could not read resume text"})
	}

	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	imported, err := s.ai.ImportResume(ctx, AIRequest{Plan: plan, Config: cfg}, text)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}

	return s.resumes.CreateBase(ctx, userID, models.CreateResumeRequest{
		Name:         name,
		TargetRole:   imported.Content.TargetRole,
		ImportOption: models.ImportFromResume,
		SelectedContent: &models.SelectedContent{
			ContactInfo:    imported.Contact,
			WorkExperience: imported.Content.WorkExperience,
			Education:      imported.Content.Education,
			Skills:         imported.Content.Skills,
			Projects:       imported.Content.Projects,
		},
	})
}
