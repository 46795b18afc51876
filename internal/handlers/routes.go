package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/services"
)

const APIPrefix = "/api/v1"

// Route is one /api/v1 endpoint; the same table drives registration and the OpenAPI document.
type Route struct {
	Method    string
	Path      string
	Summary   string
	Tag       string
	Auth      bool
	AI        bool
	Throttled bool
	Status    int
	Request   interface{}
	Multipart bool
	Response  interface{}
	Paginated bool
	Handler   fiber.Handler
}

type Handlers struct {
	Auth     *AuthHandler
	Profile  *ProfileHandler
	Resume   *ResumeHandler
	Job      *JobHandler
	Optimize *OptimizeHandler
	Billing  *BillingHandler
}

type message struct {
	Message string `json:"message"`
}

type countResponse struct {
	Count int64  `json:"count"`
	Type  string `json:"type"`
}

type subscriptionResponse struct {
	Plan         models.Plan          `json:"plan"`
	Subscription *models.Subscription `json:"subscription"`
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Routes lists every endpoint, docs included. Order matters where static segments share a prefix with :id.
func Routes(h *Handlers, baseURL string) []Route {
	routes := []Route{
		{Method: fiber.MethodGet, Path: "/health", Summary: "Health check", Tag: "System", Response: healthResponse{}, Handler: HandleHealth},
		{Method: fiber.MethodGet, Path: "/models", Summary: "List selectable AI models", Tag: "System", Response: []services.ModelInfo{}, Handler: HandleModels},

		{Method: fiber.MethodPost, Path: "/auth/register", Summary: "Register a new account", Tag: "Auth", Throttled: true, Status: fiber.StatusCreated, Request: models.RegisterRequest{}, Response: models.AuthResponse{}, Handler: h.Auth.HandleRegister},
		{Method: fiber.MethodPost, Path: "/auth/login", Summary: "Log in with email and password", Tag: "Auth", Throttled: true, Request: models.LoginRequest{}, Response: models.AuthResponse{}, Handler: h.Auth.HandleLogin},
		{Method: fiber.MethodPost, Path: "/auth/refresh", Summary: "Rotate a refresh token", Tag: "Auth", Throttled: true, Request: models.RefreshRequest{}, Response: models.AuthResponse{}, Handler: h.Auth.HandleRefresh},
		{Method: fiber.MethodPost, Path: "/auth/logout", Summary: "Revoke all refresh tokens", Tag: "Auth", Auth: true, Response: message{}, Handler: h.Auth.HandleLogout},
		{Method: fiber.MethodGet, Path: "/auth/me", Summary: "Current user, profile and subscription", Tag: "Auth", Auth: true, Response: models.MeResponse{}, Handler: h.Auth.HandleMe},

		{Method: fiber.MethodGet, Path: "/profiles", Summary: "Get the caller's profile", Tag: "Profiles", Auth: true, Response: models.Profile{}, Handler: h.Profile.HandleGet},
		{Method: fiber.MethodPatch, Path: "/profiles", Summary: "Update the caller's profile", Tag: "Profiles", Auth: true, Request: models.UpdateProfileRequest{}, Response: models.Profile{}, Handler: h.Profile.HandleUpdate},

		{Method: fiber.MethodGet, Path: "/resumes", Summary: "List resumes", Tag: "Resumes", Auth: true, Response: []models.Resume{}, Paginated: true, Handler: h.Resume.HandleList},
		{Method: fiber.MethodPost, Path: "/resumes", Summary: "Create a base resume", Tag: "Resumes", Auth: true, Status: fiber.StatusCreated, Request: models.CreateResumeRequest{}, Response: models.Resume{}, Handler: h.Resume.HandleCreate},
		{Method: fiber.MethodGet, Path: "/resumes/count", Summary: "Count resumes", Tag: "Resumes", Auth: true, Response: countResponse{}, Handler: h.Resume.HandleCount},
		{Method: fiber.MethodPost, Path: "/resumes/tailor", Summary: "Tailor a base resume to a job", Tag: "AI", Auth: true, AI: true, Status: fiber.StatusCreated, Request: models.TailorRequest{}, Response: models.TailorResponse{}, Handler: h.Resume.HandleTailor},
		{Method: fiber.MethodPost, Path: "/resumes/import", Summary: "Import a PDF or DOCX resume", Tag: "AI", Auth: true, AI: true, Status: fiber.StatusCreated, Multipart: true, Response: models.Resume{}, Handler: h.Resume.HandleImport},
		{Method: fiber.MethodGet, Path: "/resumes/:id", Summary: "Get a resume and its job", Tag: "Resumes", Auth: true, Response: resumeDetail{}, Handler: h.Resume.HandleGet},
		{Method: fiber.MethodPatch, Path: "/resumes/:id", Summary: "Update a resume", Tag: "Resumes", Auth: true, Request: models.UpdateResumeRequest{}, Response: models.Resume{}, Handler: h.Resume.HandleUpdate},
		{Method: fiber.MethodDelete, Path: "/resumes/:id", Summary: "Delete a resume", Tag: "Resumes", Auth: true, Response: message{}, Handler: h.Resume.HandleDelete},
		{Method: fiber.MethodPost, Path: "/resumes/:id/copy", Summary: "Duplicate a resume", Tag: "Resumes", Auth: true, Status: fiber.StatusCreated, Response: models.Resume{}, Handler: h.Resume.HandleCopy},
		{Method: fiber.MethodPost, Path: "/resumes/:id/score", Summary: "Score a resume", Tag: "AI", Auth: true, AI: true, Request: models.ScoreRequest{}, Response: models.ResumeScore{}, Handler: h.Resume.HandleScore},
		{Method: fiber.MethodGet, Path: "/resumes/:id/pdf", Summary: "Export a resume as PDF", Tag: "Resumes", Auth: true, Handler: h.Resume.HandlePDF},

		{Method: fiber.MethodGet, Path: "/jobs", Summary: "List jobs", Tag: "Jobs", Auth: true, Response: models.JobListResponse{}, Handler: h.Job.HandleList},
		{Method: fiber.MethodPost, Path: "/jobs", Summary: "Create a job", Tag: "Jobs", Auth: true, Status: fiber.StatusCreated, Request: models.CreateJobRequest{}, Response: models.Job{}, Handler: h.Job.HandleCreate},
		{Method: fiber.MethodPost, Path: "/jobs/format", Summary: "Structure a raw job listing", Tag: "AI", Auth: true, AI: true, Request: models.FormatJobRequest{}, Response: formatJobResponse{}, Handler: h.Job.HandleFormat},
		{Method: fiber.MethodGet, Path: "/jobs/:id", Summary: "Get a job", Tag: "Jobs", Auth: true, Response: models.Job{}, Handler: h.Job.HandleGet},
		{Method: fiber.MethodPatch, Path: "/jobs/:id", Summary: "Update a job", Tag: "Jobs", Auth: true, Request: models.UpdateJobRequest{}, Response: models.Job{}, Handler: h.Job.HandleUpdate},
		{Method: fiber.MethodDelete, Path: "/jobs/:id", Summary: "Delete a job", Tag: "Jobs", Auth: true, Response: message{}, Handler: h.Job.HandleDelete},
		{Method: fiber.MethodGet, Path: "/jobs/:id/matching-resumes", Summary: "Base resumes ranked against a job", Tag: "Jobs", Auth: true, Response: []models.ResumeMatch{}, Handler: h.Job.HandleMatchingResumes},

		{Method: fiber.MethodPost, Path: "/optimize", Summary: "Tailor and iteratively optimize a resume", Tag: "AI", Auth: true, AI: true, Request: models.OptimizeRequest{}, Response: models.OptimizeResponse{}, Handler: h.Optimize.HandleOptimize},
		{Method: fiber.MethodPost, Path: "/optimize/chat", Summary: "Edit a resume through a chat instruction", Tag: "AI", Auth: true, AI: true, Request: models.ChatRequest{}, Response: models.ChatResponse{}, Handler: h.Optimize.HandleChat},
		{Method: fiber.MethodPost, Path: "/cover-letters", Summary: "Write a cover letter", Tag: "AI", Auth: true, AI: true, Request: models.CoverLetterRequest{}, Response: models.CoverLetterResponse{}, Handler: h.Optimize.HandleCoverLetter},

		{Method: fiber.MethodGet, Path: "/billing/subscription", Summary: "Current plan and subscription", Tag: "Billing", Auth: true, Response: subscriptionResponse{}, Handler: h.Billing.HandleSubscription},
		{Method: fiber.MethodPost, Path: "/billing/checkout", Summary: "Start a Stripe checkout for the pro plan", Tag: "Billing", Auth: true, Response: models.URLResponse{}, Handler: h.Billing.HandleCheckout},
		{Method: fiber.MethodPost, Path: "/billing/portal", Summary: "Open the Stripe billing portal", Tag: "Billing", Auth: true, Response: models.URLResponse{}, Handler: h.Billing.HandlePortal},
		{Method: fiber.MethodPost, Path: "/billing/webhook", Summary: "Stripe webhook receiver", Tag: "Billing", Handler: h.Billing.HandleWebhook},
	}

	docs := Route{Method: fiber.MethodGet, Path: "/docs", Summary: "OpenAPI document", Tag: "System"}
	routes = append(routes, docs)

	doc := NewOpenAPIDocument(baseURL, routes)
	routes[len(routes)-1].Handler = func(c *fiber.Ctx) error {
		return c.JSON(doc)
	}
	return routes
}

// Middleware dependencies applied according to each route's flags.
type Middleware struct {
	Auth           services.AuthService
	Limiter        services.RateLimiter
	LoginPerMinute int
}

func Register(app *fiber.App, routes []Route, mw Middleware) {
	api := app.Group(APIPrefix)
	requireAuth := RequireAuth(mw.Auth)
	rateLimitAI := RateLimitAI(mw.Limiter)
	throttle := LoginLimiter(mw.LoginPerMinute)

	for _, r := range routes {
		chain := make([]fiber.Handler, 0, 4)
		if r.Throttled {
			chain = append(chain, throttle)
		}
		if r.Auth {
			chain = append(chain, requireAuth)
		}
		if r.AI {
			chain = append(chain, rateLimitAI)
		}
		chain = append(chain, r.Handler)
		api.Add(r.Method, r.Path, chain...)
	}
}
