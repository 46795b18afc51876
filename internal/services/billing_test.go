package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/logger"
	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

type billingFixture struct {
	svc     BillingService
	gateway *MockBillingGateway
	subs    repositories.SubscriptionRepository
	user    *models.User
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	db := newTestDB(t)
	users := repositories.NewUserRepository(db)
	f := &billingFixture{
		gateway: new(MockBillingGateway),
		subs:    repositories.NewSubscriptionRepository(db),
		user:    &models.User{Email: "pay@example.com", PasswordHash: "x"},
	}
	require.NoError(t, users.Create(context.Background(), f.user))
	f.svc = NewBillingService(f.gateway, users, f.subs, logger.Discard())
	return f
}

func subscriptionEvent(eventType, body string) stripe.Event {
	return stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(body)},
	}
}

func TestBillingService_Disabled(t *testing.T) {
	svc := NewBillingService(nil, nil, nil, logger.Discard())

	_, err := svc.Checkout(context.Background(), uuid.New())
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusServiceUnavailable, fe.Code)

	assert.ErrorAs(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"), &fe)
}

func TestBillingService_Checkout(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)

	f.gateway.On("CreateCustomer", "pay@example.com", f.user.ID).Return("cus_123", nil).Once()
	f.gateway.On("CreateCheckoutSession", "cus_123", f.user.ID).Return("https://checkout.stripe.test/s", nil)

	url, err := f.svc.Checkout(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.test/s", url)

	sub, err := f.subs.FindByUserID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", sub.StripeCustomerID)
	assert.Equal(t, models.PlanFree, sub.SubscriptionPlan)

	_, err = f.svc.Checkout(ctx, f.user.ID)
	require.NoError(t, err, "the stored customer is reused")
	f.gateway.AssertNumberOfCalls(t, "CreateCustomer", 1)

	future := time.Now().Add(time.Hour)
	sub.SubscriptionPlan = models.PlanPro
	sub.SubscriptionStatus = "active"
	sub.CurrentPeriodEnd = &future
	require.NoError(t, f.subs.Upsert(ctx, sub))

	_, err = f.svc.Checkout(ctx, f.user.ID)
	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestBillingService_Portal(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)

	_, err := f.svc.Portal(ctx, f.user.ID)
	assert.True(t, apperrors.IsValidation(err))

	require.NoError(t, f.subs.Upsert(ctx, &models.Subscription{UserID: f.user.ID, StripeCustomerID: "cus_9", SubscriptionPlan: models.PlanFree}))
	f.gateway.On("CreatePortalSession", "cus_9").Return("https://billing.stripe.test/p", nil)

	url, err := f.svc.Portal(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.test/p", url)
}

func TestBillingService_WebhookLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()

	created := fmt.Sprintf(`{"id":"sub_1","customer":"cus_1","status":"active","current_period_end":%d,"metadata":{"user_id":%q}}`,
		periodEnd, f.user.ID.String())
	f.gateway.On("ConstructEvent", []byte("created"), "sig").Return(subscriptionEvent("customer.subscription.created", created), nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("created"), "sig"))

	sub, err := f.subs.FindByUserID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, sub.SubscriptionPlan)
	assert.Equal(t, "cus_1", sub.StripeCustomerID)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.Equal(t, periodEnd, sub.CurrentPeriodEnd.Unix())
	assert.True(t, sub.HasProAccess(time.Now()))

	// No metadata: the owner is found through the stored customer id.
	deleted := `{"id":"sub_1","customer":"cus_1","status":"canceled"}`
	f.gateway.On("ConstructEvent", []byte("deleted"), "sig").Return(subscriptionEvent("customer.subscription.deleted", deleted), nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("deleted"), "sig"))

	sub, err = f.subs.FindByUserID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.SubscriptionPlan)
	assert.Equal(t, "canceled", sub.SubscriptionStatus)
}

func TestBillingService_WebhookCheckoutCompleted(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)

	session := fmt.Sprintf(`{"id":"cs_1","mode":"subscription","client_reference_id":%q,"subscription":"sub_2"}`, f.user.ID.String())
	f.gateway.On("ConstructEvent", mock.Anything, "sig").Return(subscriptionEvent("checkout.session.completed", session), nil)
	f.gateway.On("GetSubscription", "sub_2").Return(&stripe.Subscription{
		ID:       "sub_2",
		Customer: &stripe.Customer{ID: "cus_2"},
		Status:   stripe.SubscriptionStatusTrialing,
	}, nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("{}"), "sig"))

	sub, err := f.subs.FindByUserID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, sub.SubscriptionPlan)
	assert.Equal(t, "trialing", sub.SubscriptionStatus)
	assert.Nil(t, sub.TrialEnd)
}

func TestBillingService_WebhookRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)

	f.gateway.On("ConstructEvent", []byte("forged"), "bad").Return(stripe.Event{}, errors.New("signature mismatch"))
	assert.True(t, apperrors.IsValidation(f.svc.HandleWebhook(ctx, []byte("forged"), "bad")))

	orphan := `{"id":"sub_x","customer":"cus_unknown","status":"active"}`
	f.gateway.On("ConstructEvent", []byte("orphan"), "sig").Return(subscriptionEvent("customer.subscription.updated", orphan), nil)
	assert.True(t, apperrors.IsNotFound(f.svc.HandleWebhook(ctx, []byte("orphan"), "sig")))

	f.gateway.On("ConstructEvent", []byte("other"), "sig").Return(subscriptionEvent("invoice.paid", `{}`), nil)
	assert.NoError(t, f.svc.HandleWebhook(ctx, []byte("other"), "sig"))
}
