package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, resp)
}

func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var req models.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resp)
}

func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), currentUser(c)); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, message{Message: "Logged out successfully"})
}

func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	resp, err := h.authService.Me(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, resp)
}
