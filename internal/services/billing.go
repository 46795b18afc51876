package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/config"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

// BillingGateway is the slice of the Stripe API the billing flow needs.
type BillingGateway interface {
	CreateCustomer(email string, userID uuid.UUID) (string, error)
	CreateCheckoutSession(customerID string, userID uuid.UUID) (string, error)
	CreatePortalSession(customerID string) (string, error)
	GetSubscription(id string) (*stripe.Subscription, error)
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type stripeGateway struct {
	api *client.API
	cfg config.StripeConfig
}

func NewStripeGateway(cfg config.StripeConfig) BillingGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &stripeGateway{api: api, cfg: cfg}
}

func (g *stripeGateway) CreateCustomer(email string, userID uuid.UUID) (string, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.AddMetadata("user_id", userID.String())

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}
	return customer.ID, nil
}

func (g *stripeGateway) CreateCheckoutSession(customerID string, userID uuid.UUID) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(userID.String()),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(g.cfg.ProPriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": userID.String()},
		},
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.URL, nil
}

func (g *stripeGateway) CreatePortalSession(customerID string) (string, error) {
	session, err := g.api.BillingPortalSessions.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(g.cfg.PortalReturn),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return session.URL, nil
}

func (g *stripeGateway) GetSubscription(id string) (*stripe.Subscription, error) {
	sub, err := g.api.Subscriptions.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription %s: %w", id, err)
	}
	return sub, nil
}

func (g *stripeGateway) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
}

type BillingService interface {
	Checkout(ctx context.Context, userID uuid.UUID) (string, error)
	Portal(ctx context.Context, userID uuid.UUID) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type billingService struct {
	gateway BillingGateway
	users   repositories.UserRepository
	subs    repositories.SubscriptionRepository
	log     *slog.Logger
	now     func() time.Time
}

// NewBillingService accepts a nil gateway; every call then fails with 503.
func NewBillingService(gateway BillingGateway, users repositories.UserRepository, subs repositories.SubscriptionRepository, log *slog.Logger) BillingService {
	return &billingService{gateway: gateway, users: users, subs: subs, log: log, now: time.Now}
}

var errBillingDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "billing is not configured")

func (s *billingService) Checkout(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.gateway == nil {
		return "", errBillingDisabled
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	sub, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub.HasProAccess(s.now()) {
		return "", apperrors.Conflict("already subscribed to the pro plan")
	}

	if sub == nil {
		sub = &models.Subscription{UserID: userID, SubscriptionPlan: models.PlanFree}
	}
	if sub.StripeCustomerID == "" {
		customerID, err := s.gateway.CreateCustomer(user.Email, userID)
		if err != nil {
			return "", err
		}
		sub.StripeCustomerID = customerID
		if err := s.subs.Upsert(ctx, sub); err != nil {
			return "", err
		}
	}

	return s.gateway.CreateCheckoutSession(sub.StripeCustomerID, userID)
}

func (s *billingService) Portal(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.gateway == nil {
		return "", errBillingDisabled
	}

	sub, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub == nil || sub.StripeCustomerID == "" {
		return "", apperrors.Validation("no billing account found", nil)
	}

	return s.gateway.CreatePortalSession(sub.StripeCustomerID)
}

func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return errBillingDisabled
	}

	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		return apperrors.Validation("invalid webhook signature", nil)
	}

	s.log.InfoContext(ctx, "stripe webhook received", "type", event.Type, "id", event.ID)

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return apperrors.Validation("malformed checkout session", nil)
		}
		if session.Mode != stripe.CheckoutSessionModeSubscription || session.Subscription == nil {
			return nil
		}
		userID, err := uuid.Parse(session.ClientReferenceID)
		if err != nil {
			return apperrors.Validation("checkout session has no user reference", nil)
		}
		sub, err := s.gateway.GetSubscription(session.Subscription.ID)
		if err != nil {
			return err
		}
		return s.sync(ctx, userID, sub, false)

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return apperrors.Validation("malformed subscription", nil)
		}
		userID, err := s.ownerOf(ctx, &sub)
		if err != nil {
			return err
		}
		return s.sync(ctx, userID, &sub, event.Type == "customer.subscription.deleted")

	default:
		return nil
	}
}

// ownerOf resolves the user from the stored customer id, falling back to subscription metadata.
func (s *billingService) ownerOf(ctx context.Context, sub *stripe.Subscription) (uuid.UUID, error) {
	if sub.Customer != nil && sub.Customer.ID != "" {
		existing, err := s.subs.FindByCustomerID(ctx, sub.Customer.ID)
		if err == nil {
			return existing.UserID, nil
		}
		if !apperrors.IsNotFound(err) {
			return uuid.Nil, err
		}
	}

	if id, err := uuid.Parse(sub.Metadata["user_id"]); err == nil {
		return id, nil
	}
	return uuid.Nil, apperrors.NotFound("subscription owner", sub.ID)
}

func (s *billingService) sync(ctx context.Context, userID uuid.UUID, stripeSub *stripe.Subscription, deleted bool) error {
	row, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if row == nil {
		row = &models.Subscription{UserID: userID}
	}

	if stripeSub.Customer != nil {
		row.StripeCustomerID = stripeSub.Customer.ID
	}
	row.StripeSubscriptionID = stripeSub.ID
	row.SubscriptionStatus = string(stripeSub.Status)
	row.CancelAtPeriodEnd = stripeSub.CancelAtPeriodEnd
	row.CurrentPeriodEnd = unixTime(stripeSub.CurrentPeriodEnd)
	row.TrialEnd = unixTime(stripeSub.TrialEnd)
	row.SubscriptionPlan = models.PlanPro

	if deleted {
		row.SubscriptionPlan = models.PlanFree
		row.SubscriptionStatus = string(stripe.SubscriptionStatusCanceled)
	}

	if err := s.subs.Upsert(ctx, row); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "subscription synced",
		"user_id", userID, "plan", row.SubscriptionPlan, "status", row.SubscriptionStatus)
	return nil
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
