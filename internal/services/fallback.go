package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"alfredoptarigan/kryptohire/internal/models"
)

// Step names an AI operation in the fallback log lines, e.g. [TAILOR][TRY].
type Step struct {
	Tag         string
	Description string
	Failure     string
}

var (
	StepFormat      = Step{Tag: "FORMAT", Description: "Analyzing job description → Formatting requirements", Failure: "Failed to format job listing"}
	StepTailor      = Step{Tag: "TAILOR", Description: "Tailoring resume content", Failure: "Failed to tailor resume"}
	StepScore       = Step{Tag: "SCORE", Description: "Scoring resume", Failure: "Failed to score resume"}
	StepOptimize    = Step{Tag: "OPTIMIZE", Description: "Applying score feedback", Failure: "Failed to optimize resume"}
	StepCoverLetter = Step{Tag: "COVER_LETTER", Description: "Writing cover letter", Failure: "Failed to generate cover letter"}
	StepChat        = Step{Tag: "CHAT", Description: "Editing resume from chat", Failure: "Failed to apply chat edit"}
	StepImport      = Step{Tag: "IMPORT", Description: "Structuring imported resume", Failure: "Failed to import resume"}
)

// FallbackRunner tries candidate models in order until one succeeds.
type FallbackRunner struct {
	factory ClientFactory
	log     *slog.Logger
}

func NewFallbackRunner(factory ClientFactory, log *slog.Logger) *FallbackRunner {
	return &FallbackRunner{factory: factory, log: log}
}

// Run calls fn with a client for each candidate, stopping at the first success.
// Client resolution errors count as failures of that candidate. When every
// candidate fails the last error is returned.
func (r *FallbackRunner) Run(ctx context.Context, step Step, plan models.Plan, candidates []Candidate, fn func(ctx context.Context, llm LLM) error) error {
	overall := time.Now()
	subscription := "FREE"
	if plan == models.PlanPro {
		subscription = "PRO"
	}

	var lastErr error
	tried := make([]string, 0, len(candidates))

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}

		tried = append(tried, candidate.Model)
		start := time.Now()
		r.log.Info(fmt.Sprintf("[%s][TRY] %s | STEP: %s | Subscription: %s", step.Tag, candidate.Model, step.Description, subscription))

		err := r.attempt(ctx, candidate, plan, fn)
		if err == nil {
			r.log.Info(fmt.Sprintf("[%s][SUCCESS ✅] %s | Duration: %dms | STEP: %s",
				step.Tag, candidate.Model, time.Since(start).Milliseconds(), step.Description))
			return nil
		}

		lastErr = err
		r.log.Error(fmt.Sprintf("[%s][FAILED ❌] %s | STEP: %s | Duration: %dms | Reason: %s",
			step.Tag, candidate.Model, step.Description, time.Since(start).Milliseconds(), err.Error()))
	}

	r.log.Error(fmt.Sprintf("[%s][ABORT 🚨] All models failed | Tried: %s | Total Duration: %dms",
		step.Tag, strings.Join(tried, ", "), time.Since(overall).Milliseconds()))

	if lastErr == nil {
		if step.Failure == "" {
			return errors.New("no models available for " + strings.ToLower(step.Description))
		}
		return errors.New(step.Failure)
	}
	return lastErr
}

func (r *FallbackRunner) attempt(ctx context.Context, candidate Candidate, plan models.Plan, fn func(ctx context.Context, llm LLM) error) error {
	llm, err := r.factory.Resolve(candidate, plan)
	if err != nil {
		return err
	}
	return fn(ctx, llm)
}
