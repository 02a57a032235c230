package subscribers

import (
	"context"
	"testing"
	"time"

	"github.com/adelcourt/fiches-backend/pkg/db/models"
	"github.com/adelcourt/fiches-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSubscribersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	subscribers := `
CREATE TABLE IF NOT EXISTS subscribers (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  subscription_status TEXT NOT NULL DEFAULT 'inactive',
  stripe_customer_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	subscriptions := `
CREATE TABLE IF NOT EXISTS subscriptions (
  id TEXT PRIMARY KEY,
  subscriber_id TEXT NOT NULL,
  stripe_customer_id TEXT NOT NULL UNIQUE,
  stripe_subscription_id TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  start_date DATETIME,
  end_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(subscribers).Error)
	require.NoError(t, db.Exec(subscriptions).Error)
	return db
}

func seedSubscriber(t *testing.T, db *gorm.DB, email string) *models.Subscriber {
	t.Helper()
	subscriber := &models.Subscriber{
		ID:                 uuid.New(),
		Email:              email,
		SubscriptionStatus: enums.SubscriberStatusInactive,
	}
	require.NoError(t, db.Create(subscriber).Error)
	return subscriber
}

func TestUpdateStatusByEmail(t *testing.T) {
	db := setupSubscribersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedSubscriber(t, db, "a@example.com")

	updated, err := repo.UpdateStatusByEmail(ctx, "a@example.com", enums.SubscriberStatusActive)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, enums.SubscriberStatusActive, updated.SubscriptionStatus)

	// No auto-provisioning: unknown email affects nothing.
	missing, err := repo.UpdateStatusByEmail(ctx, "nobody@example.com", enums.SubscriberStatusActive)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateStatusByEmailPassesProviderStatusThrough(t *testing.T) {
	db := setupSubscribersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedSubscriber(t, db, "b@example.com")

	updated, err := repo.UpdateStatusByEmail(ctx, "b@example.com", enums.SubscriberStatus("past_due"))
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "past_due", updated.SubscriptionStatus.String())
}

func TestSubscriptionLookupAndCreate(t *testing.T) {
	db := setupSubscribersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	subscriber := seedSubscriber(t, db, "c@example.com")

	found, err := repo.FindSubscriptionByStripeCustomerID(ctx, "cus_123")
	require.NoError(t, err)
	assert.Nil(t, found)

	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	sub := &models.Subscription{
		ID:                   uuid.New(),
		SubscriberID:         subscriber.ID,
		StripeCustomerID:     "cus_123",
		StripeSubscriptionID: "sub_123",
		Status:               enums.SubscriberStatusActive,
		StartDate:            &start,
		EndDate:              &end,
	}
	require.NoError(t, repo.CreateSubscription(ctx, sub))

	found, err = repo.FindSubscriptionByStripeCustomerID(ctx, "cus_123")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, subscriber.ID, found.SubscriberID)

	// Replaying the insert for the same customer violates the unique key.
	dup := &models.Subscription{
		ID:               uuid.New(),
		SubscriberID:     subscriber.ID,
		StripeCustomerID: "cus_123",
		Status:           enums.SubscriberStatusActive,
	}
	assert.Error(t, repo.CreateSubscription(ctx, dup))
}

func TestSetStripeCustomerID(t *testing.T) {
	db := setupSubscribersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	subscriber := seedSubscriber(t, db, "d@example.com")
	require.NoError(t, repo.SetStripeCustomerID(ctx, subscriber.ID, "cus_d"))

	reloaded, err := repo.FindByEmail(ctx, "d@example.com")
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, "cus_d", reloaded.StripeCustomerID)
}
