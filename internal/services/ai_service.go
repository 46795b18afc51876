package services

import (
	"context"
	"fmt"
	"strings"

	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/models"
)

const (
	formatTemperature      float32 = 0.7
	tailorTemperature      float32 = 0.5
	optimizeTemperature    float32 = 0.5
	chatTemperature        float32 = 0.5
	coverLetterTemperature float32 = 0.7
	importTemperature      float32 = 0.3
)

// AIRequest carries who is asking and which model they prefer.
type AIRequest struct {
	Plan   models.Plan
	Config *models.AIRequestConfig
}

type OptimizeResult struct {
	Content     models.ResumeContent `json:"content"`
	ChangesMade []string             `json:"changes_made"`
}

type ChatEditResult struct {
	Content        models.ResumeContent `json:"content"`
	Message        string               `json:"message"`
	ChangesApplied []models.ChatChange  `json:"changes_applied"`
}

type ImportedResume struct {
	Contact models.ContactInfo   `json:"contact"`
	Content models.ResumeContent `json:"content"`
}

type AIService interface {
	FormatJobListing(ctx context.Context, req AIRequest, listing string) (*models.JobListing, error)
	TailorResume(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job) (*models.ResumeContent, error)
	ScoreResume(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job) (*models.ResumeScore, error)
	OptimizeResume(ctx context.Context, req AIRequest, score *models.ResumeScore, resume *models.Resume, job *models.Job) (*OptimizeResult, error)
	WriteCoverLetter(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job, tone, length string) (string, error)
	ChatEdit(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job, message string) (*ChatEditResult, error)
	ImportResume(ctx context.Context, req AIRequest, text string) (*ImportedResume, error)
}

type aiService struct {
	cfg       config.AIConfig
	runner    *FallbackRunner
	generator *StructuredGenerator
	prompts   *PromptBuilder
}

func NewAIService(cfg config.AIConfig, runner *FallbackRunner) AIService {
	return &aiService{
		cfg:       cfg,
		runner:    runner,
		generator: NewStructuredGenerator(cfg.StructuredRetries),
		prompts:   NewPromptBuilder(),
	}
}

// generate runs one structured call across the candidate list.
func (s *aiService) generate(ctx context.Context, step Step, req AIRequest, system, prompt string, schema *Schema, temperature float32, out interface{}) error {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	candidates := Candidates(s.cfg, req.Config)
	return s.runner.Run(ctx, step, req.Plan, candidates, func(ctx context.Context, llm LLM) error {
		return s.generator.GenerateObject(ctx, llm, ObjectRequest{
			System:      system,
			Prompt:      prompt,
			Schema:      schema,
			Temperature: temperature,
		}, out)
	})
}

func (s *aiService) FormatJobListing(ctx context.Context, req AIRequest, listing string) (*models.JobListing, error) {
	system, prompt := s.prompts.BuildFormatJobPrompt(listing)

	var out struct {
		Content models.JobListing `json:"content"`
	}
	if err := s.generate(ctx, StepFormat, req, system, prompt, jobListingSchema, formatTemperature, &out); err != nil {
		return nil, err
	}

	job := out.Content
	if job.Keywords == nil {
		job.Keywords = []string{}
	}
	return &job, nil
}

func (s *aiService) TailorResume(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job) (*models.ResumeContent, error) {
	system, prompt := s.prompts.BuildTailorPrompt(resume, job.Listing())

	var out struct {
		Content models.ResumeContent `json:"content"`
	}
	if err := s.generate(ctx, StepTailor, req, system, prompt, tailoredResumeSchema, tailorTemperature, &out); err != nil {
		return nil, err
	}

	out.Content.Normalize()
	return &out.Content, nil
}

func (s *aiService) ScoreResume(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job) (*models.ResumeScore, error) {
	system, prompt := s.prompts.BuildScorePrompt(resume, job)

	var score models.ResumeScore
	if err := s.generate(ctx, StepScore, req, system, prompt, resumeScoreSchema, s.cfg.DefaultTemperature, &score); err != nil {
		return nil, err
	}

	tailored := job != nil && !resume.IsBaseResume
	score.IsTailoredResume = tailored
	if !tailored {
		score.JobAlignment = nil
	}
	if score.Miscellaneous == nil {
		score.Miscellaneous = map[string]models.ScoreDetail{}
	}
	return &score, nil
}

func (s *aiService) OptimizeResume(ctx context.Context, req AIRequest, score *models.ResumeScore, resume *models.Resume, job *models.Job) (*OptimizeResult, error) {
	system, prompt := s.prompts.BuildOptimizationPrompt(score, resume, job)

	var out OptimizeResult
	if err := s.generate(ctx, StepOptimize, req, system, prompt, optimizedResumeSchema, optimizeTemperature, &out); err != nil {
		return nil, err
	}

	out.Content.Normalize()
	if out.ChangesMade == nil {
		out.ChangesMade = []string{}
	}
	return &out, nil
}

func (s *aiService) WriteCoverLetter(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job, tone, length string) (string, error) {
	if tone == "" {
		tone = "professional"
	}
	if length == "" {
		length = "medium"
	}
	system, prompt := s.prompts.BuildCoverLetterPrompt(resume, job, tone, length)

	var out struct {
		Content string `json:"content"`
	}
	if err := s.generate(ctx, StepCoverLetter, req, system, prompt, coverLetterSchema, coverLetterTemperature, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Content), nil
}

func (s *aiService) ChatEdit(ctx context.Context, req AIRequest, resume *models.Resume, job *models.Job, message string) (*ChatEditResult, error) {
	system, prompt := s.prompts.BuildChatPrompt(resume, job, message)

	var out ChatEditResult
	if err := s.generate(ctx, StepChat, req, system, prompt, chatEditSchema, chatTemperature, &out); err != nil {
		return nil, err
	}

	out.Content.Normalize()
	if out.ChangesApplied == nil {
		out.ChangesApplied = []models.ChatChange{}
	}
	return &out, nil
}

func (s *aiService) ImportResume(ctx context.Context, req AIRequest, text string) (*ImportedResume, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text to import")
	}
	system, prompt := s.prompts.BuildImportPrompt(text)

	var out ImportedResume
	if err := s.generate(ctx, StepImport, req, system, prompt, importedResumeSchema, importTemperature, &out); err != nil {
		return nil, err
	}

	out.Content.Normalize()
	return &out, nil
}
