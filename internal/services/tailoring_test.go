package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/logger"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

type tailoringFixture struct {
	svc     TailoringService
	ai      *MockAIService
	events  *capturingPublisher
	resumes ResumeService
	userID  uuid.UUID
	base    *models.Resume
	job     *models.Job
}

func newTailoringFixture(t *testing.T) *tailoringFixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)

	jobs := repositories.NewJobRepository(db)
	resumes := NewResumeService(repositories.NewResumeRepository(db), jobs, repositories.NewProfileRepository(db), NewNoopIndex(), logger.Discard())
	f := &tailoringFixture{
		ai:      new(MockAIService),
		events:  &capturingPublisher{},
		resumes: resumes,
		userID:  uuid.New(),
	}
	f.svc = NewTailoringService(NewPlanService(repositories.NewSubscriptionRepository(db)), resumes, jobs, f.ai, f.events, logger.Discard())

	var err error
	f.base, err = resumes.CreateBase(ctx, f.userID, models.CreateResumeRequest{Name: "Base", ImportOption: models.ImportFresh})
	require.NoError(t, err)

	f.job = &models.Job{UserID: f.userID, CompanyName: "Acme", PositionTitle: "Go Developer", Description: "Go services", IsActive: true}
	require.NoError(t, jobs.Create(ctx, f.job))
	return f
}

func scoreOf(v float64) *models.ResumeScore {
	return &models.ResumeScore{OverallScore: models.ScoreDetail{Score: v}}
}

func tailoredContent() *models.ResumeContent {
	return &models.ResumeContent{Skills: []models.Skill{{Category: "Backend", Items: []string{"Go"}}}}
}

func TestTailoringService_OptimizeReachesTarget(t *testing.T) {
	f := newTailoringFixture(t)
	target := 80.0
	maxIter := 3

	f.ai.On("TailorResume", mock.Anything, AIRequest{Plan: models.PlanFree}, mock.Anything, mock.Anything).Return(tailoredContent(), nil)
	f.ai.On("ScoreResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(scoreOf(60), nil).Once()
	f.ai.On("ScoreResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(scoreOf(82), nil)
	f.ai.On("OptimizeResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&OptimizeResult{
		Content:     models.ResumeContent{Skills: []models.Skill{{Category: "Backend", Items: []string{"Go", "gRPC"}}}},
		ChangesMade: []string{"Added gRPC"},
	}, nil).Once()

	resp, err := f.svc.Optimize(context.Background(), f.userID, models.OptimizeRequest{
		BaseResumeID:  f.base.ID.String(),
		JobID:         f.job.ID.String(),
		TargetScore:   &target,
		MaxIterations: &maxIter,
	})
	require.NoError(t, err)

	assert.True(t, resp.TargetAchieved)
	assert.Equal(t, 2, resp.Iterations)
	assert.InDelta(t, 82, resp.Score.OverallScore.Score, 0.001)
	require.Len(t, resp.OptimizationHistory, 2)
	assert.Equal(t, []string{"Added gRPC"}, resp.OptimizationHistory[0].Changes)
	assert.Equal(t, []string{"Target score achieved"}, resp.OptimizationHistory[1].Changes)
	assert.False(t, resp.Resume.IsBaseResume)

	stored, job, err := f.resumes.Get(context.Background(), resp.Resume.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "gRPC"}, stored.Skills[0].Items)
	assert.Equal(t, f.job.ID, job.ID)

	require.Len(t, f.events.events, 2)
	assert.False(t, f.events.events[0].Done)
	assert.True(t, f.events.events[1].Done)
	assert.Equal(t, resp.Resume.ID, f.events.events[1].ResumeID)

	f.ai.AssertNumberOfCalls(t, "ScoreResume", 3)
}

func TestTailoringService_OptimizeExhaustsIterations(t *testing.T) {
	f := newTailoringFixture(t)
	maxIter := 2

	f.ai.On("TailorResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tailoredContent(), nil)
	f.ai.On("ScoreResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(scoreOf(50), nil)
	f.ai.On("OptimizeResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&OptimizeResult{Content: *tailoredContent(), ChangesMade: []string{"Reworded"}}, nil)

	resp, err := f.svc.Optimize(context.Background(), f.userID, models.OptimizeRequest{
		BaseResumeID:  f.base.ID.String(),
		JobID:         f.job.ID.String(),
		MaxIterations: &maxIter,
	})
	require.NoError(t, err)

	assert.False(t, resp.TargetAchieved)
	assert.Equal(t, 2, resp.Iterations)
	assert.NotNil(t, resp.Score, "a final score is always produced")
	f.ai.AssertNumberOfCalls(t, "OptimizeResume", 2)
	f.ai.AssertNumberOfCalls(t, "ScoreResume", 3)

	require.Len(t, f.events.events, 2)
	assert.True(t, f.events.events[1].Done)
	assert.InDelta(t, DefaultTargetScore, f.events.events[1].Target, 0.001)
}

func TestTailoringService_OptimizeDefaults(t *testing.T) {
	f := newTailoringFixture(t)

	f.ai.On("TailorResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tailoredContent(), nil)
	f.ai.On("ScoreResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(scoreOf(DefaultTargetScore-1), nil)
	f.ai.On("OptimizeResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&OptimizeResult{Content: *tailoredContent(), ChangesMade: []string{"Reworded"}}, nil)

	resp, err := f.svc.Optimize(context.Background(), f.userID, models.OptimizeRequest{
		BaseResumeID: f.base.ID.String(),
		JobID:        f.job.ID.String(),
	})
	require.NoError(t, err)

	assert.False(t, resp.TargetAchieved)
	assert.Equal(t, DefaultMaxIterations, resp.Iterations)
	f.ai.AssertNumberOfCalls(t, "OptimizeResume", DefaultMaxIterations)
	require.NotEmpty(t, f.events.events)
	assert.InDelta(t, 85.0, f.events.events[len(f.events.events)-1].Target, 0.001)
}

func TestTailoringService_OptimizeErrors(t *testing.T) {
	f := newTailoringFixture(t)
	ctx := context.Background()

	_, err := f.svc.Optimize(ctx, f.userID, models.OptimizeRequest{BaseResumeID: "nope", JobID: f.job.ID.String()})
	assert.True(t, apperrors.IsValidation(err))

	tailored, err := f.resumes.CreateTailored(ctx, f.base, f.job, *tailoredContent())
	require.NoError(t, err)
	_, err = f.svc.Optimize(ctx, f.userID, models.OptimizeRequest{BaseResumeID: tailored.ID.String(), JobID: f.job.ID.String()})
	assert.True(t, apperrors.IsNotFound(err), "only base resumes can be optimized")

	f.ai.On("TailorResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("all models failed"))
	_, err = f.svc.Optimize(ctx, f.userID, models.OptimizeRequest{BaseResumeID: f.base.ID.String(), JobID: f.job.ID.String()})
	assert.EqualError(t, err, "all models failed")
}

func TestTailoringService_Tailor(t *testing.T) {
	f := newTailoringFixture(t)
	ctx := context.Background()

	f.ai.On("TailorResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tailoredContent(), nil)
	f.ai.On("ScoreResume", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("scoring down"))

	resp, err := f.svc.Tailor(ctx, f.userID, models.TailorRequest{
		BaseResumeID:  f.base.ID.String(),
		JobID:         f.job.ID.String(),
		GenerateScore: true,
	})
	require.NoError(t, err, "a failed optional score does not fail tailoring")
	assert.Nil(t, resp.Score)
	assert.Equal(t, "Go Developer at Acme", resp.Resume.Name)

	_, err = f.svc.Tailor(ctx, f.userID, models.TailorRequest{BaseResumeID: resp.Resume.ID.String(), JobID: f.job.ID.String()})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.Tailor(ctx, f.userID, models.TailorRequest{BaseResumeID: f.base.ID.String(), JobID: uuid.NewString()})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTailoringService_ChatAndCoverLetter(t *testing.T) {
	f := newTailoringFixture(t)
	ctx := context.Background()

	f.ai.On("ChatEdit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "add Go to skills").Return(&ChatEditResult{
		Content:        *tailoredContent(),
		Message:        "Added Go.",
		ChangesApplied: []models.ChatChange{{Section: "skills", Description: "Added Go"}},
	}, nil)

	chat, err := f.svc.Chat(ctx, f.userID, models.ChatRequest{ResumeID: f.base.ID.String(), Message: "add Go to skills"})
	require.NoError(t, err)
	assert.Equal(t, "Added Go.", chat.Message)

	stored, _, err := f.resumes.Get(ctx, f.base.ID, f.userID)
	require.NoError(t, err)
	require.Len(t, stored.Skills, 1)

	f.ai.On("WriteCoverLetter", mock.Anything, mock.Anything, mock.Anything, mock.Anything, "formal", "short").Return("Dear Acme,", nil)
	letter, err := f.svc.CoverLetter(ctx, f.userID, models.CoverLetterRequest{
		ResumeID: f.base.ID.String(),
		JobID:    f.job.ID.String(),
		Tone:     "formal",
		Length:   "short",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dear Acme,", letter.CoverLetter)
	assert.Equal(t, f.job.ID, letter.JobID)
}
