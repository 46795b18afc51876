package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/services"
)

// RequireAuth accepts "Authorization: Bearer <jwt>" and stores the user id in Locals.
func RequireAuth(auth services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return apperrors.Authentication("Missing or invalid authorization header")
		}

		userID, err := auth.ParseAccessToken(strings.TrimSpace(token))
		if err != nil {
			return err
		}

		c.Locals(localUserID, userID)
		return c.Next()
	}
}

// RateLimitAI spends one token of the caller's AI budget per request.
func RateLimitAI(rl services.RateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := rl.Allow(currentUser(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// LoginLimiter throttles credential endpoints per client IP.
func LoginLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return apperrors.RateLimit(time.Minute)
		},
	})
}
