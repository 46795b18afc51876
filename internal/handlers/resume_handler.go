package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/services"
)

type ResumeHandler struct {
	resumeService    services.ResumeService
	tailoringService services.TailoringService
	importService    services.ImportService
	renderer         services.ResumeRenderer
}

func NewResumeHandler(
	resumeService services.ResumeService,
	tailoringService services.TailoringService,
	importService services.ImportService,
	renderer services.ResumeRenderer,
) *ResumeHandler {
	return &ResumeHandler{
		resumeService:    resumeService,
		tailoringService: tailoringService,
		importService:    importService,
		renderer:         renderer,
	}
}

type resumeDetail struct {
	Resume *models.Resume `json:"resume"`
	Job    *models.Job    `json:"job"`
}

func resumeTypeQuery(c *fiber.Ctx) (models.ResumeType, error) {
	switch t := models.ResumeType(c.Query("type", string(models.ResumeTypeAll))); t {
	case models.ResumeTypeAll, models.ResumeTypeBase, models.ResumeTypeTailored:
		return t, nil
	default:
		return "", apperrors.Validation("Invalid resume type", map[string]string{"type": "oneof=base tailored all"})
	}
}

func (h *ResumeHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateResumeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resume, err := h.resumeService.CreateBase(c.UserContext(), currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, resume)
}

func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	resumeType, err := resumeTypeQuery(c)
	if err != nil {
		return err
	}

	resumes, pagination, err := h.resumeService.List(
		c.UserContext(),
		currentUser(c),
		resumeType,
		queryInt(c, "page", 1),
		queryInt(c, "limit", 10),
	)
	if err != nil {
		return err
	}

	return c.JSON(Envelope{Data: resumes, Pagination: pagination})
}

func (h *ResumeHandler) HandleCount(c *fiber.Ctx) error {
	resumeType, err := resumeTypeQuery(c)
	if err != nil {
		return err
	}

	count, err := h.resumeService.Count(c.UserContext(), currentUser(c), resumeType)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, countResponse{Count: count, Type: string(resumeType)})
}

func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	resume, job, err := h.resumeService.Get(c.UserContext(), id, currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resumeDetail{Resume: resume, Job: job})
}

func (h *ResumeHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateResumeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resume, err := h.resumeService.Update(c.UserContext(), id, currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resume)
}

func (h *ResumeHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.resumeService.Delete(c.UserContext(), id, currentUser(c)); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, message{Message: "Resume deleted successfully"})
}

func (h *ResumeHandler) HandleCopy(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	resume, err := h.resumeService.Copy(c.UserContext(), id, currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, resume)
}

func (h *ResumeHandler) HandleTailor(c *fiber.Ctx) error {
	var req models.TailorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.tailoringService.Tailor(c.UserContext(), currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, resp)
}

func (h *ResumeHandler) HandleScore(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.ScoreRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	score, err := h.tailoringService.Score(c.UserContext(), id, currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, score)
}

// HandleImport accepts multipart "file" (PDF or DOCX) plus optional "name" and JSON "config".
func (h *ResumeHandler) HandleImport(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return apperrors.Validation("No file uploaded", map[string]string{"file": "required"})
	}

	var cfg *models.AIRequestConfig
	if raw := c.FormValue("config"); raw != "" {
		cfg = &models.AIRequestConfig{}
		if err := json.Unmarshal([]byte(raw), cfg); err != nil {
			return apperrors.Validation("Invalid config", map[string]string{"config": "must be a JSON object"})
		}
		if err := validate.Struct(cfg); err != nil {
			return err
		}
	}

	resume, err := h.importService.Import(c.UserContext(), currentUser(c), file, c.FormValue("name"), cfg)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, resume)
}

func (h *ResumeHandler) HandlePDF(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	resume, _, err := h.resumeService.Get(c.UserContext(), id, currentUser(c))
	if err != nil {
		return err
	}

	pdf, err := h.renderer.RenderPDF(c.UserContext(), resume)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, safeFilename(resume.Name)))
	return c.Send(pdf)
}

func safeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "resume"
	}
	return string(out)
}
