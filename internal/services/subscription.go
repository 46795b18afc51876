package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/kryptohire/internal/models"
	"alfredoptarigan/kryptohire/internal/repositories"
)

// PlanService answers "which plan does this user get right now".
type PlanService interface {
	GetSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	GetPlan(ctx context.Context, userID uuid.UUID) (models.Plan, error)
}

type planService struct {
	subs repositories.SubscriptionRepository
	now  func() time.Time
}

func NewPlanService(subs repositories.SubscriptionRepository) PlanService {
	return &planService{subs: subs, now: time.Now}
}

func (s *planService) GetSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	return s.subs.FindByUserID(ctx, userID)
}

// GetPlan defaults to free when there is no subscription row or access has lapsed.
func (s *planService) GetPlan(ctx context.Context, userID uuid.UUID) (models.Plan, error) {
	sub, err := s.subs.FindByUserID(ctx, userID)
	if err != nil {
		return models.PlanFree, err
	}
	return sub.EffectivePlan(s.now()), nil
}
