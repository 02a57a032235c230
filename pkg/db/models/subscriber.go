package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adelcourt/fiches-backend/pkg/enums"
)

// Subscriber is the durable per-email entitlement record. Rows are created by
// account signup, never by the webhook pipeline.
type Subscriber struct {
	ID                 uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email              string                 `gorm:"column:email;not null;unique"`
	SubscriptionStatus enums.SubscriberStatus `gorm:"column:subscription_status;not null;default:'inactive'"`
	StripeCustomerID   string                 `gorm:"column:stripe_customer_id;index"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
