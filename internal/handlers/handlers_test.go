package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/logger"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
	"alfredoptarigan/kryptohire/internal/services"
)

type fakeRenderer struct{}

func (fakeRenderer) RenderHTML(resume *models.Resume) (string, error) {
	return "<h1>" + resume.Name + "</h1>", nil
}

func (fakeRenderer) RenderPDF(_ context.Context, resume *models.Resume) ([]byte, error) {
	return []byte("%PDF-1.4 " + resume.Name), nil
}

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithLimiter(t, services.NewRateLimiter(1, 1))
}

func newTestAppWithLimiter(t *testing.T, limiter services.RateLimiter) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	log := logger.Discard()
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	jobRepo := repositories.NewJobRepository(db)
	subRepo := repositories.NewSubscriptionRepository(db)

	aiCfg := config.AIConfig{StructuredRetries: 0}
	authService := services.NewAuthService(userRepo, repositories.NewRefreshTokenRepository(db), profileRepo, subRepo, config.AuthConfig{
		JWTSecret:       "handler-test-secret-value",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
	}, log)
	planService := services.NewPlanService(subRepo)
	aiService := services.NewAIService(aiCfg, services.NewFallbackRunner(services.NewClientFactory(aiCfg, "http://localhost"), log))
	index := services.NewNoopIndex()

	resumeService := services.NewResumeService(resumeRepo, jobRepo, profileRepo, index, log)
	tailoringService := services.NewTailoringService(planService, resumeService, jobRepo, aiService, services.NewNoopPublisher(), log)
	storage, err := services.NewStorageService(context.Background(), config.StorageConfig{Driver: "local", UploadPath: t.TempDir()})
	require.NoError(t, err)
	importService := services.NewImportService(storage, services.NewDocumentParser(), aiService, planService, resumeService, 1<<20, log)

	h := &Handlers{
		Auth:     NewAuthHandler(authService),
		Profile:  NewProfileHandler(services.NewProfileService(profileRepo)),
		Resume:   NewResumeHandler(resumeService, tailoringService, importService, fakeRenderer{}),
		Job:      NewJobHandler(services.NewJobService(jobRepo, resumeRepo, aiService, index, log), planService),
		Optimize: NewOptimizeHandler(tailoringService),
		Billing:  NewBillingHandler(services.NewBillingService(nil, userRepo, subRepo, log), planService),
	}

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.NewErrorHandler(log)})
	Register(app, Routes(h, "http://localhost:3021"), Middleware{
		Auth:           authService,
		Limiter:        limiter,
		LoginPerMinute: 100,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, APIPrefix+path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func decodeError(t *testing.T, resp *http.Response) apperrors.Body {
	t.Helper()
	defer resp.Body.Close()

	var out apperrors.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Error
}

func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp := call(t, app, fiber.MethodPost, "/auth/register", "", models.RegisterRequest{Email: email, Password: "secret123", FirstName: "Jane"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var auth models.AuthResponse
	decode(t, resp, &auth)
	require.NotEmpty(t, auth.AccessToken)
	return auth.AccessToken
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "jane@example.com")

	resp := call(t, app, fiber.MethodPost, "/auth/register", "", models.RegisterRequest{Email: "jane@example.com", Password: "secret123"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = call(t, app, fiber.MethodPost, "/auth/login", "", models.LoginRequest{Email: "jane@example.com", Password: "nope12345"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = call(t, app, fiber.MethodGet, "/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me models.MeResponse
	decode(t, resp, &me)
	assert.Equal(t, "jane@example.com", me.User.Email)
	assert.Equal(t, "Jane", me.Profile.FirstName)
}

func TestRequireAuth(t *testing.T) {
	app := newTestApp(t)

	resp := call(t, app, fiber.MethodGet, "/resumes", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, apperrors.CodeAuthentication, body.Code)
	assert.Equal(t, "Missing or invalid authorization header", body.Message)

	resp = call(t, app, fiber.MethodGet, "/resumes", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = call(t, app, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	app := newTestApp(t)

	resp := call(t, app, fiber.MethodPost, "/auth/register", "", map[string]string{"email": "not-an-email", "password": "123"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, apperrors.CodeValidation, body.Code)
	assert.Contains(t, body.Details, "email")
	assert.Contains(t, body.Details, "password")

	token := registerUser(t, app, "v@example.com")

	resp = call(t, app, fiber.MethodGet, "/resumes/not-a-uuid", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, fiber.MethodGet, "/resumes?type=weird", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodPost, APIPrefix+"/resumes", strings.NewReader("{broken"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "Invalid JSON body", decodeError(t, raw).Message)
}

func TestResumeEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "crud@example.com")

	resp := call(t, app, fiber.MethodPost, "/resumes", token, models.CreateResumeRequest{Name: "Backend"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created models.Resume
	decode(t, resp, &created)
	assert.Equal(t, "Jane", created.FirstName, "contact details come from the profile")

	resp = call(t, app, fiber.MethodPatch, "/resumes/"+created.ID.String(), token, map[string]any{"name": "Backend v2"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = call(t, app, fiber.MethodPost, "/resumes/"+created.ID.String()+"/copy", token, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var dup models.Resume
	decode(t, resp, &dup)
	assert.Equal(t, "Backend v2 (Copy)", dup.Name)

	resp = call(t, app, fiber.MethodGet, "/resumes?page=1&limit=1", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []models.Resume
	env := decode(t, resp, &list)
	assert.Len(t, list, 1)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(2), env.Pagination.Total)
	assert.True(t, env.Pagination.HasNext)

	resp = call(t, app, fiber.MethodGet, "/resumes/count?type=base", token, nil)
	var count countResponse
	decode(t, resp, &count)
	assert.Equal(t, int64(2), count.Count)

	resp = call(t, app, fiber.MethodGet, "/resumes/"+created.ID.String()+"/pdf", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="Backend_v2.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))

	other := registerUser(t, app, "other@example.com")
	resp = call(t, app, fiber.MethodGet, "/resumes/"+created.ID.String(), other, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "another user's resume is invisible")

	resp = call(t, app, fiber.MethodDelete, "/resumes/"+created.ID.String(), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = call(t, app, fiber.MethodGet, "/resumes/"+created.ID.String(), token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestJobEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "jobs@example.com")

	resp := call(t, app, fiber.MethodPost, "/jobs", token, models.CreateJobRequest{
		CompanyName:   "Acme",
		PositionTitle: "Go Developer",
		Description:   "Write Go",
		WorkLocation:  "remote",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var job models.Job
	decode(t, resp, &job)

	resp = call(t, app, fiber.MethodGet, "/jobs?work_location=remote", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list models.JobListResponse
	decode(t, resp, &list)
	assert.Equal(t, int64(1), list.TotalCount)

	resp = call(t, app, fiber.MethodGet, "/jobs/"+job.ID.String()+"/matching-resumes", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var matches []models.ResumeMatch
	decode(t, resp, &matches)
	assert.Empty(t, matches)

	resp = call(t, app, fiber.MethodDelete, "/jobs/"+job.ID.String(), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAIRoutesAreRateLimited(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "ai@example.com")

	resp := call(t, app, fiber.MethodPost, "/resumes/tailor", token, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "the first request reaches validation")

	resp = call(t, app, fiber.MethodPost, "/resumes/tailor", token, map[string]string{})
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestOptimizeRequestBounds(t *testing.T) {
	app := newTestAppWithLimiter(t, services.NewRateLimiter(100, 100))
	token := registerUser(t, app, "bounds@example.com")

	floatPtr := func(v float64) *float64 { return &v }
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name       string
		target     *float64
		iterations *int
		invalid    string
	}{
		{name: "zero iterations", iterations: intPtr(0), invalid: "max_iterations"},
		{name: "too many iterations", iterations: intPtr(11), invalid: "max_iterations"},
		{name: "target above 100", target: floatPtr(150), invalid: "target_score"},
		{name: "negative target", target: floatPtr(-1), invalid: "target_score"},
		{name: "zero target", target: floatPtr(0)},
		{name: "upper bounds", target: floatPtr(100), iterations: intPtr(10)},
		{name: "defaults", target: nil, iterations: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, fiber.MethodPost, "/optimize", token, models.OptimizeRequest{
				BaseResumeID:  "6f1c1f5e-3a7b-4f55-9b7e-2d8a3f4c5b6a",
				JobID:         "0b7e2d8a-3f4c-4b6a-8f1c-1f5e3a7b4f55",
				TargetScore:   tt.target,
				MaxIterations: tt.iterations,
			})

			body := decodeError(t, resp)
			if tt.invalid != "" {
				require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
				assert.Contains(t, body.Details, tt.invalid)
				return
			}
			// Valid bounds pass validation and reach the resume lookup.
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestBillingWithoutStripe(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "bill@example.com")

	resp := call(t, app, fiber.MethodGet, "/billing/subscription", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var sub subscriptionResponse
	decode(t, resp, &sub)
	assert.Equal(t, models.PlanFree, sub.Plan)
	assert.Nil(t, sub.Subscription)

	resp = call(t, app, fiber.MethodPost, "/billing/checkout", token, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp = call(t, app, fiber.MethodPost, "/billing/webhook", "", map[string]string{"type": "ping"})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestModelsEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := call(t, app, fiber.MethodGet, "/models", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []services.ModelInfo
	decode(t, resp, &list)
	assert.Len(t, list, len(services.PublicModels()))
}
