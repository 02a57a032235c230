package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adelcourt/fiches-backend/internal/subscribers"
	"github.com/adelcourt/fiches-backend/pkg/db/models"
	"github.com/adelcourt/fiches-backend/pkg/enums"
	pkgerrors "github.com/adelcourt/fiches-backend/pkg/errors"
	"github.com/adelcourt/fiches-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	SubscriberRepo    subscribers.Repository
	Gateway           Gateway
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service reconciles Stripe subscription lifecycle events onto subscriber
// records. Every handler is idempotent; a replayed event converges on the
// same final state.
type Service struct {
	repo     subscribers.Repository
	gateway  Gateway
	txRunner txRunner
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.SubscriberRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscriber repo required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe gateway required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		repo:     params.SubscriberRepo,
		gateway:  params.Gateway,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		return s.handleCheckoutCompleted(ctx, &session)
	case stripe.EventTypeCustomerSubscriptionCreated:
		sub, err := subscriptionFromEvent(event)
		if err != nil {
			return err
		}
		return s.handleSubscriptionCreated(ctx, sub)
	case stripe.EventTypeCustomerSubscriptionUpdated:
		sub, err := subscriptionFromEvent(event)
		if err != nil {
			return err
		}
		return s.handleSubscriptionUpdated(ctx, sub)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		sub, err := subscriptionFromEvent(event)
		if err != nil {
			return err
		}
		return s.handleSubscriptionDeleted(ctx, sub)
	case stripe.EventTypeInvoicePaymentSucceeded, stripe.EventTypeInvoicePaymentFailed:
		// Reserved extension points. Acknowledge so Stripe stops retrying.
		s.info(ctx, "invoice event acknowledged without mutation")
		return nil
	default:
		s.info(ctx, "unhandled event type acknowledged")
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil || session.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}

	// Webhook payloads carry a partial session; the expanded re-fetch is the
	// only reliable source for customer email and subscription details.
	full, err := s.gateway.GetCheckoutSession(ctx, session.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch checkout session")
	}

	email := sessionEmail(full)
	if email == "" {
		s.info(ctx, "checkout session has no customer email, dropping event")
		return nil
	}

	customerID := ""
	if full.Customer != nil {
		customerID = full.Customer.ID
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subscriber, err := repo.UpdateStatusByEmail(ctx, email, enums.SubscriberStatusActive)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate subscriber")
		}
		if subscriber == nil {
			// Webhooks never provision accounts.
			s.info(s.withEmail(ctx, email), "no subscriber for checkout email, dropping event")
			return nil
		}

		if customerID != "" && subscriber.StripeCustomerID == "" {
			if err := repo.SetStripeCustomerID(ctx, subscriber.ID, customerID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link stripe customer")
			}
		}

		return s.ensureSubscription(ctx, repo, subscriber.ID, customerID, full.Subscription)
	})
}

func (s *Service) handleSubscriptionCreated(ctx context.Context, sub *stripe.Subscription) error {
	email, customerID, err := s.resolveCustomerEmail(ctx, sub)
	if err != nil || email == "" {
		return err
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subscriber, err := repo.UpdateStatusByEmail(ctx, email, enums.SubscriberStatusActive)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate subscriber")
		}
		if subscriber == nil {
			s.info(s.withEmail(ctx, email), "no subscriber for customer email, dropping event")
			return nil
		}

		if subscriber.StripeCustomerID == "" {
			if err := repo.SetStripeCustomerID(ctx, subscriber.ID, customerID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link stripe customer")
			}
		}

		return s.ensureSubscription(ctx, repo, subscriber.ID, customerID, sub)
	})
}

func (s *Service) handleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	email, _, err := s.resolveCustomerEmail(ctx, sub)
	if err != nil || email == "" {
		return err
	}

	// Provider status is stored verbatim, not remapped.
	subscriber, err := s.repo.UpdateStatusByEmail(ctx, email, enums.SubscriberStatus(sub.Status))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscriber status")
	}
	if subscriber == nil {
		s.info(s.withEmail(ctx, email), "no subscriber for customer email, dropping event")
	}
	return nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	email, _, err := s.resolveCustomerEmail(ctx, sub)
	if err != nil || email == "" {
		return err
	}

	subscriber, err := s.repo.UpdateStatusByEmail(ctx, email, enums.SubscriberStatusCancelled)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel subscriber")
	}
	if subscriber == nil {
		s.info(s.withEmail(ctx, email), "no subscriber for customer email, dropping event")
	}
	return nil
}

// ensureSubscription inserts a subscription row unless one already exists for
// the Stripe customer. The lookup and insert run inside the caller's
// transaction so concurrent retries cannot double-insert.
func (s *Service) ensureSubscription(ctx context.Context, repo subscribers.Repository, subscriberID uuid.UUID, customerID string, sub *stripe.Subscription) error {
	if customerID == "" {
		s.info(ctx, "event carries no stripe customer id, skipping subscription insert")
		return nil
	}

	existing, err := repo.FindSubscriptionByStripeCustomerID(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup subscription")
	}
	if existing != nil {
		return nil
	}

	record := &models.Subscription{
		SubscriberID:     subscriberID,
		StripeCustomerID: customerID,
		Status:           enums.SubscriberStatusActive,
	}
	if sub != nil {
		record.StripeSubscriptionID = sub.ID
		record.StartDate, record.EndDate = periodBounds(sub)
	}
	if err := repo.CreateSubscription(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert subscription")
	}
	return nil
}

// resolveCustomerEmail looks the event's customer up at Stripe. A customer
// with no email is accepted but produces no mutation; there is no recovery
// path without one.
func (s *Service) resolveCustomerEmail(ctx context.Context, sub *stripe.Subscription) (string, string, error) {
	if sub == nil || sub.Customer == nil || sub.Customer.ID == "" {
		s.info(ctx, "subscription event carries no customer, dropping event")
		return "", "", nil
	}

	cust, err := s.gateway.GetCustomer(ctx, sub.Customer.ID)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe customer")
	}
	if cust == nil || cust.Email == "" {
		s.info(ctx, "stripe customer has no email, dropping event")
		return "", sub.Customer.ID, nil
	}
	return cust.Email, sub.Customer.ID, nil
}

func subscriptionFromEvent(event *stripe.Event) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subscription event")
	}
	return &sub, nil
}

func sessionEmail(session *stripe.CheckoutSession) string {
	if session == nil {
		return ""
	}
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	if session.Customer != nil && session.Customer.Email != "" {
		return session.Customer.Email
	}
	return session.CustomerEmail
}

func periodBounds(sub *stripe.Subscription) (start, end *time.Time) {
	if sub == nil {
		return nil, nil
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		start = epochToTime(item.CurrentPeriodStart)
		end = epochToTime(item.CurrentPeriodEnd)
	}
	if start == nil {
		start = epochToTime(sub.StartDate)
	}
	return start, end
}

func epochToTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func (s *Service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *Service) withEmail(ctx context.Context, email string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithEmail(ctx, email)
}
