package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/services"
)

// OptimizeHandler serves the AI endpoints that rewrite or extend an existing resume.
type OptimizeHandler struct {
	tailoringService services.TailoringService
}

func NewOptimizeHandler(tailoringService services.TailoringService) *OptimizeHandler {
	return &OptimizeHandler{tailoringService: tailoringService}
}

func (h *OptimizeHandler) HandleOptimize(c *fiber.Ctx) error {
	var req models.OptimizeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.tailoringService.Optimize(c.UserContext(), currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resp)
}

func (h *OptimizeHandler) HandleChat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.tailoringService.Chat(c.UserContext(), currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resp)
}

func (h *OptimizeHandler) HandleCoverLetter(c *fiber.Ctx) error {
	var req models.CoverLetterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.tailoringService.CoverLetter(c.UserContext(), currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resp)
}
