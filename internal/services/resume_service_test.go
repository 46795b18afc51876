package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/logger"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

type resumeFixture struct {
	resumes  ResumeService
	jobs     repositories.JobRepository
	profiles repositories.ProfileRepository
	index    *memoryIndex
}

func newResumeFixture(t *testing.T) *resumeFixture {
	t.Helper()
	db := newTestDB(t)
	f := &resumeFixture{
		jobs:     repositories.NewJobRepository(db),
		profiles: repositories.NewProfileRepository(db),
		index:    newMemoryIndex(),
	}
	f.resumes = NewResumeService(repositories.NewResumeRepository(db), f.jobs, f.profiles, f.index, logger.Discard())
	return f
}

func (f *resumeFixture) createJob(t *testing.T, userID uuid.UUID) *models.Job {
	t.Helper()
	job := &models.Job{UserID: userID, CompanyName: "Acme", PositionTitle: "Backend Engineer", Description: "Build APIs in Go", IsActive: true}
	require.NoError(t, f.jobs.Create(context.Background(), job))
	return job
}

func sectionVisibility(t *testing.T, resume *models.Resume) map[string]bool {
	t.Helper()
	var raw map[string]struct {
		Visible bool `json:"visible"`
	}
	require.NoError(t, json.Unmarshal(resume.SectionConfigs, &raw))
	out := make(map[string]bool, len(raw))
	for k, v := range raw {
		out[k] = v.Visible
	}
	return out
}

func TestResumeService_CreateBase(t *testing.T) {
	ctx := context.Background()
	f := newResumeFixture(t)
	userID := uuid.New()

	profile := &models.Profile{UserID: userID}
	profile.FirstName = "Jane"
	profile.Email = "jane@example.com"
	require.NoError(t, f.profiles.Upsert(ctx, profile))

	t.Run("import-profile copies contact details and selected sections", func(t *testing.T) {
		resume, err := f.resumes.CreateBase(ctx, userID, models.CreateResumeRequest{
			Name: "General",
			SelectedContent: &models.SelectedContent{
				ContactInfo: models.ContactInfo{FirstName: "Ignored"},
				Skills:      []models.Skill{{Category: "Languages", Items: []string{"Go"}}},
			},
		})
		require.NoError(t, err)

		assert.True(t, resume.IsBaseResume)
		assert.Equal(t, "Jane", resume.FirstName)
		assert.Equal(t, models.DefaultSectionOrder, resume.SectionOrder)
		assert.Equal(t, []models.WorkExperience{}, resume.WorkExperience)
		assert.Equal(t, map[string]bool{
			"work_experience": false,
			"education":       false,
			"skills":          true,
			"projects":        false,
		}, sectionVisibility(t, resume))
		assert.True(t, f.index.has(resume.ID))
	})

	t.Run("import-resume takes contact details from the selection", func(t *testing.T) {
		resume, err := f.resumes.CreateBase(ctx, userID, models.CreateResumeRequest{
			Name:         "From upload",
			TargetRole:   "SRE",
			ImportOption: models.ImportFromResume,
			SelectedContent: &models.SelectedContent{
				ContactInfo: models.ContactInfo{FirstName: "Janet"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Janet", resume.FirstName)
		assert.Equal(t, "SRE", resume.TargetRole)
	})

	t.Run("fresh starts empty", func(t *testing.T) {
		resume, err := f.resumes.CreateBase(ctx, userID, models.CreateResumeRequest{Name: "Blank", ImportOption: models.ImportFresh})
		require.NoError(t, err)
		assert.Empty(t, resume.FirstName)
	})

	t.Run("unknown option", func(t *testing.T) {
		_, err := f.resumes.CreateBase(ctx, userID, models.CreateResumeRequest{Name: "x", ImportOption: "magic"})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestResumeService_TailoredLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newResumeFixture(t)
	userID := uuid.New()

	base, err := f.resumes.CreateBase(ctx, userID, models.CreateResumeRequest{Name: "Base", ImportOption: models.ImportFresh, TargetRole: "Engineer"})
	require.NoError(t, err)
	job := f.createJob(t, userID)

	tailored, err := f.resumes.CreateTailored(ctx, base, job, models.ResumeContent{
		Skills: []models.Skill{{Category: "Backend", Items: []string{"Go", "PostgreSQL"}}},
	})
	require.NoError(t, err)
	assert.False(t, tailored.IsBaseResume)
	assert.Equal(t, "Backend Engineer at Acme", tailored.Name)
	assert.Equal(t, "Engineer", tailored.TargetRole)
	require.NotNil(t, tailored.JobID)

	got, gotJob, err := f.resumes.Get(ctx, tailored.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, tailored.ID, got.ID)
	require.NotNil(t, gotJob)
	assert.Equal(t, job.ID, gotJob.ID)

	_, _, err = f.resumes.Get(ctx, tailored.ID, uuid.New())
	assert.True(t, apperrors.IsNotFound(err), "resumes are owner scoped")

	count, err := f.resumes.Count(ctx, userID, models.ResumeTypeTailored)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, f.resumes.Delete(ctx, tailored.ID, userID))
	_, err = f.jobs.FindByID(ctx, job.ID, userID)
	assert.True(t, apperrors.IsNotFound(err), "deleting a tailored resume removes its job")
	assert.False(t, f.index.has(tailored.ID))

	require.NoError(t, f.resumes.Delete(ctx, base.ID, userID))
	assert.True(t, apperrors.IsNotFound(f.resumes.Delete(ctx, base.ID, userID)))
}

func TestResumeService_UpdateAndCopy(t *testing.T) {
	ctx := context.Background()
	f := newResumeFixture(t)
	userID := uuid.New()

	base, err := f.resumes.CreateBase(ctx, userID, models.CreateResumeRequest{Name: "Base", ImportOption: models.ImportFresh})
	require.NoError(t, err)

	name := "Renamed"
	settings := map[string]any{"document_font_size": 11}
	updated, err := f.resumes.Update(ctx, base.ID, userID, models.UpdateResumeRequest{
		Name:             &name,
		Projects:         []models.Project{{Name: "kryptohire", Description: []string{"Resume tooling"}}},
		DocumentSettings: &settings,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.JSONEq(t, `{"document_font_size":11}`, string(updated.DocumentSettings))

	stored, _, err := f.resumes.Get(ctx, base.ID, userID)
	require.NoError(t, err)
	require.Len(t, stored.Projects, 1)
	assert.Equal(t, "kryptohire", stored.Projects[0].Name)

	dup, err := f.resumes.Copy(ctx, base.ID, userID)
	require.NoError(t, err)
	assert.NotEqual(t, base.ID, dup.ID)
	assert.Equal(t, "Renamed (Copy)", dup.Name)
	assert.Equal(t, stored.Projects, dup.Projects)
	assert.True(t, dup.IsBaseResume)

	_, err = f.resumes.Update(ctx, uuid.New(), userID, models.UpdateResumeRequest{Name: &name})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestResumeService_ListPagination(t *testing.T) {
	ctx := context.Background()
	f := newResumeFixture(t)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := f.resumes.CreateBase(ctx, userID, models.CreateResumeRequest{Name: "Base", ImportOption: models.ImportFresh})
		require.NoError(t, err)
	}
	_, err := f.resumes.CreateBase(ctx, uuid.New(), models.CreateResumeRequest{Name: "Other user", ImportOption: models.ImportFresh})
	require.NoError(t, err)

	resumes, page, err := f.resumes.List(ctx, userID, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, resumes, 1)
	assert.Equal(t, models.Pagination{Page: 2, Limit: 2, Total: 3, TotalPages: 2, HasNext: false, HasPrev: true}, page)

	resumes, page, err = f.resumes.List(ctx, userID, models.ResumeTypeTailored, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.Resume{}, resumes)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageLimit, page.Limit)
}

func TestResumeService_Reindex(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	resumeRepo := repositories.NewResumeRepository(db)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, resumeRepo.Create(ctx, &models.Resume{UserID: userID, Name: "r", IsBaseResume: true}))
	}

	disabled := NewResumeService(resumeRepo, repositories.NewJobRepository(db), repositories.NewProfileRepository(db), NewNoopIndex(), logger.Discard())
	_, err := disabled.Reindex(ctx)
	assert.Error(t, err)

	index := newMemoryIndex()
	svc := NewResumeService(resumeRepo, repositories.NewJobRepository(db), repositories.NewProfileRepository(db), index, logger.Discard())
	n, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, index.resumes, 3)
}

func TestProfileService_UpdateCreatesMissingProfile(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewProfileService(repositories.NewProfileRepository(db))
	userID := uuid.New()

	_, err := svc.Get(ctx, userID)
	assert.True(t, apperrors.IsNotFound(err))

	first := "Jane"
	profile, err := svc.Update(ctx, userID, models.UpdateProfileRequest{
		FirstName: &first,
		Skills:    []models.Skill{{Category: "Languages", Items: []string{"Go"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, userID, profile.UserID)

	last := "Doe"
	_, err = svc.Update(ctx, userID, models.UpdateProfileRequest{LastName: &last})
	require.NoError(t, err)

	got, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.Len(t, got.Skills, 1)
}
