package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

const (
	DefaultTargetScore   = 85.0
	DefaultMaxIterations = 5
)

// TailoringService runs the AI workflows that read and rewrite stored resumes.
type TailoringService interface {
	Tailor(ctx context.Context, userID uuid.UUID, req models.TailorRequest) (*models.TailorResponse, error)
	Score(ctx context.Context, resumeID, userID uuid.UUID, req models.ScoreRequest) (*models.ResumeScore, error)
	Optimize(ctx context.Context, userID uuid.UUID, req models.OptimizeRequest) (*models.OptimizeResponse, error)
	Chat(ctx context.Context, userID uuid.UUID, req models.ChatRequest) (*models.ChatResponse, error)
	CoverLetter(ctx context.Context, userID uuid.UUID, req models.CoverLetterRequest) (*models.CoverLetterResponse, error)
}

type tailoringService struct {
	plans   PlanService
	resumes ResumeService
	jobs    repositories.JobRepository
	ai      AIService
	events  EventPublisher
	log     *slog.Logger
	now     func() time.Time
}

func NewTailoringService(
	plans PlanService,
	resumes ResumeService,
	jobs repositories.JobRepository,
	ai AIService,
	events EventPublisher,
	log *slog.Logger,
) TailoringService {
	return &tailoringService{
		plans:   plans,
		resumes: resumes,
		jobs:    jobs,
		ai:      ai,
		events:  events,
		log:     log,
		now:     time.Now,
	}
}

func (s *tailoringService) aiRequest(ctx context.Context, userID uuid.UUID, cfg *models.AIRequestConfig) (AIRequest, error) {
	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return AIRequest{}, err
	}
	return AIRequest{Plan: plan, Config: cfg}, nil
}

func (s *tailoringService) Tailor(ctx context.Context, userID uuid.UUID, req models.TailorRequest) (*models.TailorResponse, error) {
	baseID, jobID, err := parseIDs(req.BaseResumeID, req.JobID)
	if err != nil {
		return nil, err
	}

	ai, err := s.aiRequest(ctx, userID, req.Config)
	if err != nil {
		return nil, err
	}

	base, _, err := s.resumes.Get(ctx, baseID, userID)
	if err != nil {
		return nil, err
	}
	if !base.IsBaseResume {
		return nil, apperrors.Validation("Only base resumes can be tailored", nil)
	}

	job, err := s.jobs.FindByID(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}

	content, err := s.ai.TailorResume(ctx, ai, base, job)
	if err != nil {
		return nil, err
	}

	resume, err := s.resumes.CreateTailored(ctx, base, job, *content)
	if err != nil {
		return nil, err
	}

	resp := &models.TailorResponse{Resume: resume}
	if req.GenerateScore {
		score, err := s.ai.ScoreResume(ctx, ai, resume, job)
		if err != nil {
			s.log.WarnContext(ctx, "failed to score tailored resume", "resume_id", resume.ID, "error", err)
		} else {
			resp.Score = score
		}
	}
	return resp, nil
}

func (s *tailoringService) Score(ctx context.Context, resumeID, userID uuid.UUID, req models.ScoreRequest) (*models.ResumeScore, error) {
	ai, err := s.aiRequest(ctx, userID, req.Config)
	if err != nil {
		return nil, err
	}

	resume, job, err := s.resumes.Get(ctx, resumeID, userID)
	if err != nil {
		return nil, err
	}
	return s.ai.ScoreResume(ctx, ai, resume, job)
}

// Optimize tailors a base resume to a job, then alternates scoring and rewriting
// until the score reaches the target or the iteration budget runs out.
func (s *tailoringService) Optimize(ctx context.Context, userID uuid.UUID, req models.OptimizeRequest) (*models.OptimizeResponse, error) {
	baseID, jobID, err := parseIDs(req.BaseResumeID, req.JobID)
	if err != nil {
		return nil, err
	}

	target := DefaultTargetScore
	if req.TargetScore != nil {
		target = *req.TargetScore
	}
	maxIterations := DefaultMaxIterations
	if req.MaxIterations != nil {
		maxIterations = *req.MaxIterations
	}

	ai, err := s.aiRequest(ctx, userID, req.Config)
	if err != nil {
		return nil, err
	}

	base, _, err := s.resumes.Get(ctx, baseID, userID)
	if err != nil {
		return nil, err
	}
	if !base.IsBaseResume {
		return nil, apperrors.NotFound("Base resume", baseID.String())
	}

	job, err := s.jobs.FindByID(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "[OPTIMIZE] starting", "resume_id", baseID, "job_id", jobID,
		"target_score", target, "max_iterations", maxIterations)

	content, err := s.ai.TailorResume(ctx, ai, base, job)
	if err != nil {
		return nil, err
	}
	current, err := s.resumes.CreateTailored(ctx, base, job, *content)
	if err != nil {
		return nil, err
	}

	history := []models.OptimizationHistory{}
	achieved := false

	for i := 1; i <= maxIterations; i++ {
		score, err := s.ai.ScoreResume(ctx, ai, current, job)
		if err != nil {
			return nil, err
		}
		overall := score.OverallScore.Score
		s.log.InfoContext(ctx, "[OPTIMIZE] scored", "iteration", i, "score", overall)

		if overall >= target {
			achieved = true
			entry := models.OptimizationHistory{
				Iteration: i,
				Score:     overall,
				Changes:   []string{"Target score achieved"},
				Timestamp: s.now().UTC(),
			}
			history = append(history, entry)
			s.publish(ctx, current, entry, target, true)
			break
		}

		result, err := s.ai.OptimizeResume(ctx, ai, score, current, job)
		if err != nil {
			return nil, err
		}

		current.ApplyContent(result.Content)
		if err := s.resumes.Save(ctx, current); err != nil {
			return nil, err
		}

		entry := models.OptimizationHistory{
			Iteration: i,
			Score:     overall,
			Changes:   result.ChangesMade,
			Timestamp: s.now().UTC(),
		}
		history = append(history, entry)
		s.publish(ctx, current, entry, target, i == maxIterations)
	}

	final, err := s.ai.ScoreResume(ctx, ai, current, job)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "[OPTIMIZE] complete", "resume_id", current.ID,
		"final_score", final.OverallScore.Score, "iterations", len(history), "target_achieved", achieved)

	return &models.OptimizeResponse{
		Resume:              current,
		Score:               final,
		Iterations:          len(history),
		TargetAchieved:      achieved,
		OptimizationHistory: history,
	}, nil
}

func (s *tailoringService) publish(ctx context.Context, resume *models.Resume, entry models.OptimizationHistory, target float64, done bool) {
	s.events.PublishOptimizeProgress(ctx, ProgressEvent{
		ResumeID:  resume.ID,
		UserID:    resume.UserID,
		Iteration: entry,
		Target:    target,
		Done:      done,
	})
}

func (s *tailoringService) Chat(ctx context.Context, userID uuid.UUID, req models.ChatRequest) (*models.ChatResponse, error) {
	resumeID, err := parseID(req.ResumeID, "resume_id")
	if err != nil {
		return nil, err
	}

	ai, err := s.aiRequest(ctx, userID, req.Config)
	if err != nil {
		return nil, err
	}

	resume, job, err := s.resumes.Get(ctx, resumeID, userID)
	if err != nil {
		return nil, err
	}

	if req.JobID != "" {
		jobID, err := parseID(req.JobID, "job_id")
		if err != nil {
			return nil, err
		}
		if job, err = s.jobs.FindByID(ctx, jobID, userID); err != nil {
			return nil, err
		}
	}

	result, err := s.ai.ChatEdit(ctx, ai, resume, job, req.Message)
	if err != nil {
		return nil, err
	}

	resume.ApplyContent(result.Content)
	if err := s.resumes.Save(ctx, resume); err != nil {
		return nil, err
	}

	return &models.ChatResponse{
		Resume:         resume,
		Message:        result.Message,
		ChangesApplied: result.ChangesApplied,
	}, nil
}

func (s *tailoringService) CoverLetter(ctx context.Context, userID uuid.UUID, req models.CoverLetterRequest) (*models.CoverLetterResponse, error) {
	resumeID, jobID, err := parseIDs(req.ResumeID, req.JobID)
	if err != nil {
		return nil, err
	}

	ai, err := s.aiRequest(ctx, userID, req.Config)
	if err != nil {
		return nil, err
	}

	resume, _, err := s.resumes.Get(ctx, resumeID, userID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.FindByID(ctx, jobID, userID)
	if err != nil {
		return nil, err
	}

	letter, err := s.ai.WriteCoverLetter(ctx, ai, resume, job, req.Tone, req.Length)
	if err != nil {
		return nil, err
	}

	return &models.CoverLetterResponse{
		CoverLetter: letter,
		ResumeID:    resume.ID,
		JobID:       job.ID,
	}, nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation(fmt.Sprintf("Invalid %s", field), map[string]string{field: "must be a valid UUID"})
	}
	return id, nil
}

func parseIDs(resumeID, jobID string) (uuid.UUID, uuid.UUID, error) {
	rid, err := parseID(resumeID, "resume_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	jid, err := parseID(jobID, "job_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return rid, jid, nil
}
