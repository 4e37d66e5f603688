// service/billing_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/controlroom-hq/control-room/api/db"
	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	logger "github.com/controlroom-hq/control-room/api/logging"
	"github.com/controlroom-hq/control-room/api/model"
	"github.com/controlroom-hq/control-room/api/util"
)

// IBillingService defines the interface for billing webhook processing
type IBillingService interface {
	HandleEvent(ctx context.Context, event model.BillingEvent) error
	GetSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error)
}

// BillingStore is the persistence surface HandleEvent writes to.
// dao.BillingDAO satisfies it.
type BillingStore interface {
	UpsertSubscription(ctx context.Context, sub model.Subscription) error
	MarkSubscriptionCanceled(ctx context.Context, subscriptionID string) error
	GetSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error)
	UpsertPurchase(ctx context.Context, purchase model.Purchase) error
}

// EventDedup tracks which provider event ids have been applied. MarkSeen
// reports whether this is the first delivery; Forget releases an id whose
// effects could not be applied, so the provider's retry is not swallowed.
type EventDedup interface {
	MarkSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// redisEventDedup is the Redis-backed dedup set with the configured retention.
type redisEventDedup struct{}

func NewRedisEventDedup() EventDedup {
	return redisEventDedup{}
}

func (redisEventDedup) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	return db.MarkBillingEventSeen(ctx, eventID)
}

func (redisEventDedup) Forget(ctx context.Context, eventID string) error {
	return db.ClearBillingEventSeen(ctx, eventID)
}

// BillingService maps payment-provider webhook events to idempotent upserts.
type BillingService struct {
	store           BillingStore
	dedup           EventDedup
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IBillingService = &BillingService{}

// NewBillingService creates a new instance of BillingService
func NewBillingService(store BillingStore, dedup EventDedup, notificationSvc *util.NotificationService, eventBus *util.EventBus) *BillingService {
	return &BillingService{
		store:           store,
		dedup:           dedup,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}
}

// HandleEvent applies one webhook delivery. Deliveries are at-least-once: the
// event id is recorded in a dedup set first, and a repeat delivery returns
// ErrDuplicateEvent without touching the store. If applying the effects fails
// the id is released again, so the provider's retry re-applies them instead of
// being acknowledged as a duplicate. Unknown event types are acknowledged
// without effect.
func (s *BillingService) HandleEvent(ctx context.Context, event model.BillingEvent) error {
	if event.ID == "" {
		return cr_errors.ErrInvalidEventPayload
	}

	first, err := s.dedup.MarkSeen(ctx, event.ID)
	if err != nil {
		logger.Error("Failed to check billing event dedup set", zap.Error(err), zap.String("eventID", event.ID))
		return cr_errors.ErrInternalServer
	}
	if !first {
		logger.Info("Duplicate billing event skipped",
			zap.String("eventID", event.ID),
			zap.String("eventType", string(event.Type)))
		return cr_errors.ErrDuplicateEvent
	}

	if err := s.applyEvent(ctx, event); err != nil {
		if forgetErr := s.dedup.Forget(ctx, event.ID); forgetErr != nil {
			logger.Error("Failed to release billing event for retry",
				zap.Error(forgetErr), zap.String("eventID", event.ID))
		}
		return err
	}
	return nil
}

func (s *BillingService) applyEvent(ctx context.Context, event model.BillingEvent) error {
	payload, err := event.Payload()
	if err != nil {
		return fmt.Errorf("%w: %v", cr_errors.ErrInvalidEventPayload, err)
	}

	switch p := payload.(type) {
	case model.SubscriptionPayload:
		return s.applySubscription(ctx, event.Type, p)
	case model.CheckoutPayload:
		return s.applyCheckout(ctx, p)
	case model.OpaquePayload:
		logger.Info("Unhandled billing event type acknowledged",
			zap.String("eventID", event.ID),
			zap.String("eventType", string(event.Type)))
		return nil
	default:
		return cr_errors.ErrInvalidEventPayload
	}
}

func (s *BillingService) applySubscription(ctx context.Context, eventType model.BillingEventType, p model.SubscriptionPayload) error {
	if p.SubscriptionID == "" {
		return cr_errors.ErrInvalidEventPayload
	}

	if eventType == model.EventSubscriptionDeleted {
		if err := s.store.MarkSubscriptionCanceled(ctx, p.SubscriptionID); err != nil {
			return err
		}
		logger.Info("Subscription canceled", zap.String("subscriptionID", p.SubscriptionID))
		return nil
	}

	sub := model.Subscription{
		ID:          p.SubscriptionID,
		CustomerID:  p.CustomerID,
		WorkspaceID: p.WorkspaceID,
		Plan:        p.Plan,
		Status:      p.Status,
		PeriodEnd:   p.PeriodEnd,
	}
	if err := s.store.UpsertSubscription(ctx, sub); err != nil {
		return err
	}

	if err := s.notificationSvc.NotifySubscriptionChange(ctx, "updated", sub); err != nil {
		logger.Warn("Failed to send subscription notification", zap.Error(err), zap.String("subscriptionID", sub.ID))
	}

	logger.Info("Subscription upserted",
		zap.String("subscriptionID", sub.ID),
		zap.String("workspaceID", sub.WorkspaceID),
		zap.String("status", sub.Status))
	return nil
}

func (s *BillingService) applyCheckout(ctx context.Context, p model.CheckoutPayload) error {
	if p.PurchaseID == "" {
		return cr_errors.ErrInvalidEventPayload
	}

	purchase := model.Purchase{
		ID:          p.PurchaseID,
		CustomerID:  p.CustomerID,
		WorkspaceID: p.WorkspaceID,
		ListingID:   p.ListingID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
	}
	if err := s.store.UpsertPurchase(ctx, purchase); err != nil {
		return err
	}

	logger.Info("Purchase recorded",
		zap.String("purchaseID", purchase.ID),
		zap.String("listingID", purchase.ListingID))
	return nil
}

// GetSubscription retrieves a subscription by the provider's id
func (s *BillingService) GetSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	return s.store.GetSubscription(ctx, subscriptionID)
}
