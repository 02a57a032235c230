package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adelcourt/fiches-backend/pkg/enums"
)

// Subscription persists one Stripe subscription per subscriber. The unique
// stripe_customer_id is what keeps replayed creation events from inserting
// duplicates.
type Subscription struct {
	ID                   uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SubscriberID         uuid.UUID              `gorm:"column:subscriber_id;type:uuid;not null;index"`
	StripeCustomerID     string                 `gorm:"column:stripe_customer_id;not null;unique"`
	StripeSubscriptionID string                 `gorm:"column:stripe_subscription_id"`
	Status               enums.SubscriberStatus `gorm:"column:status;not null;default:'active'"`
	StartDate            *time.Time             `gorm:"column:start_date"`
	EndDate              *time.Time             `gorm:"column:end_date"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
