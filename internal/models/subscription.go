package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

type Subscription struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	StripeCustomerID     string     `gorm:"type:text;index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string     `gorm:"type:text;index" json:"stripe_subscription_id,omitempty"`
	SubscriptionPlan     Plan       `gorm:"type:text;not null;default:'free'" json:"subscription_plan"`
	SubscriptionStatus   string     `gorm:"type:text" json:"subscription_status"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"`
	TrialEnd             *time.Time `json:"trial_end"`
	CancelAtPeriodEnd    bool       `gorm:"not null;default:false" json:"cancel_at_period_end"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// HasProAccess reports whether the subscription currently grants the pro plan.
func (s *Subscription) HasProAccess(now time.Time) bool {
	if s == nil || s.SubscriptionPlan != PlanPro {
		return false
	}

	if s.SubscriptionStatus != "active" && s.SubscriptionStatus != "trialing" {
		return false
	}

	periodOpen := s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(now)
	trialOpen := s.TrialEnd != nil && s.TrialEnd.After(now)
	return periodOpen || trialOpen
}

// EffectivePlan is pro only while access is active, free otherwise.
func (s *Subscription) EffectivePlan(now time.Time) Plan {
	if s.HasProAccess(now) {
		return PlanPro
	}
	return PlanFree
}
