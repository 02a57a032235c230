package subscribers

import (
	"context"

	"github.com/adelcourt/fiches-backend/pkg/db/models"
	"github.com/adelcourt/fiches-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles subscriber and subscription persistence. Subscribers are
// matched by email only; the webhook pipeline never creates them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	// UpdateStatusByEmail sets the entitlement status for the subscriber with
	// the given email and returns the updated row, or nil when no row matched.
	UpdateStatusByEmail(ctx context.Context, email string, status enums.SubscriberStatus) (*models.Subscriber, error)
	SetStripeCustomerID(ctx context.Context, subscriberID uuid.UUID, customerID string) error
	FindSubscriptionByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, subscription *models.Subscription) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a subscriber repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	if email == "" {
		return nil, nil
	}
	var subscriber models.Subscriber
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&subscriber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

func (r *repository) UpdateStatusByEmail(ctx context.Context, email string, status enums.SubscriberStatus) (*models.Subscriber, error) {
	if email == "" {
		return nil, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Subscriber{}).
		Where("email = ?", email).
		Update("subscription_status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByEmail(ctx, email)
}

func (r *repository) SetStripeCustomerID(ctx context.Context, subscriberID uuid.UUID, customerID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscriber{}).
		Where("id = ?", subscriberID).
		Update("stripe_customer_id", customerID).Error
}

func (r *repository) FindSubscriptionByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	if customerID == "" {
		return nil, nil
	}
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", customerID).
		First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) CreateSubscription(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}
