package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/services"
)

type BillingHandler struct {
	billingService services.BillingService
	planService    services.PlanService
}

func NewBillingHandler(billingService services.BillingService, planService services.PlanService) *BillingHandler {
	return &BillingHandler{billingService: billingService, planService: planService}
}

func (h *BillingHandler) HandleCheckout(c *fiber.Ctx) error {
	url, err := h.billingService.Checkout(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.URLResponse{URL: url})
}

func (h *BillingHandler) HandlePortal(c *fiber.Ctx) error {
	url, err := h.billingService.Portal(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, models.URLResponse{URL: url})
}

func (h *BillingHandler) HandleSubscription(c *fiber.Ctx) error {
	userID := currentUser(c)
	sub, err := h.planService.GetSubscription(c.UserContext(), userID)
	if err != nil {
		return err
	}
	plan, err := h.planService.GetPlan(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, subscriptionResponse{Plan: plan, Subscription: sub})
}

// HandleWebhook is unauthenticated; the Stripe-Signature header is the credential.
func (h *BillingHandler) HandleWebhook(c *fiber.Ctx) error {
	if err := h.billingService.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}
