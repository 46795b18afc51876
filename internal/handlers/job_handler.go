package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
	"alfredoptarigan/kryptohire/internal/services"
)

type JobHandler struct {
	jobService  services.JobService
	planService services.PlanService
}

func NewJobHandler(jobService services.JobService, planService services.PlanService) *JobHandler {
	return &JobHandler{jobService: jobService, planService: planService}
}

type formatJobResponse struct {
	Listing *models.JobListing `json:"listing"`
	Job     *models.Job        `json:"job,omitempty"`
}

func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	job, err := h.jobService.Create(c.UserContext(), currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, job)
}

func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	filter := repositories.JobFilter{
		WorkLocation:   c.Query("work_location"),
		EmploymentType: c.Query("employment_type"),
		Page:           queryInt(c, "page", 1),
		Limit:          queryInt(c, "limit", 10),
	}

	switch models.WorkLocation(filter.WorkLocation) {
	case "", models.WorkLocationRemote, models.WorkLocationInPerson, models.WorkLocationHybrid:
	default:
		return apperrors.Validation("Invalid work_location filter", map[string]string{"work_location": "oneof=remote in_person hybrid"})
	}
	switch models.EmploymentType(filter.EmploymentType) {
	case "", models.EmploymentFullTime, models.EmploymentPartTime, models.EmploymentCoOp, models.EmploymentInternship:
	default:
		return apperrors.Validation("Invalid employment_type filter", map[string]string{"employment_type": "oneof=full_time part_time co_op internship"})
	}

	resp, err := h.jobService.List(c.UserContext(), currentUser(c), filter)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resp)
}

func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	job, err := h.jobService.Get(c.UserContext(), id, currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, job)
}

func (h *JobHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	job, err := h.jobService.Update(c.UserContext(), id, currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, job)
}

func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.jobService.Delete(c.UserContext(), id, currentUser(c)); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, message{Message: "Job deleted successfully"})
}

func (h *JobHandler) HandleFormat(c *fiber.Ctx) error {
	var req models.FormatJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	userID := currentUser(c)
	plan, err := h.planService.GetPlan(c.UserContext(), userID)
	if err != nil {
		return err
	}

	listing, job, err := h.jobService.Format(c.UserContext(), userID, services.AIRequest{Plan: plan, Config: req.Config}, req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if job != nil {
		status = fiber.StatusCreated
	}
	return respond(c, status, formatJobResponse{Listing: listing, Job: job})
}

func (h *JobHandler) HandleMatchingResumes(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	matches, err := h.jobService.MatchingResumes(c.UserContext(), id, currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, matches)
}
