package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/kryptohire/internal/models"
)

type SubscriptionRepository interface {
	// FindByUserID returns nil, nil when the user never subscribed.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	FindByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error)
	Upsert(ctx context.Context, sub *models.Subscription) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&sub).Error; err != nil {
		return nil, wrapFind(err, "Subscription", "")
	}
	return &sub, nil
}

// Upsert creates or replaces the user's single subscription row.
func (r *subscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Subscription
		err := tx.Where("user_id = ?", sub.UserID).
			Limit(1).
			Find(&existing).Error
		if err != nil {
			return err
		}

		if existing.ID == uuid.Nil {
			return tx.Create(sub).Error
		}

		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
		return tx.Save(sub).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}
