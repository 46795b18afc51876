package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) HandleGet(c *fiber.Ctx) error {
	profile, err := h.profileService.Get(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profile)
}

func (h *ProfileHandler) HandleUpdate(c *fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	profile, err := h.profileService.Update(c.UserContext(), currentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, profile)
}
