package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/kryptohire/internal/services"
)

func HandleHealth(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, healthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleModels lists the models a client may request.
func HandleModels(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, services.PublicModels())
}
