// service/billing_service_test.go
package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	logger "github.com/controlroom-hq/control-room/api/logging"
	"github.com/controlroom-hq/control-room/api/model"
	"github.com/controlroom-hq/control-room/api/util"
)

type fakeBillingStore struct {
	subscriptions map[string]model.Subscription
	purchases     map[string]model.Purchase
	failUpserts   int
}

func newFakeBillingStore() *fakeBillingStore {
	return &fakeBillingStore{
		subscriptions: map[string]model.Subscription{},
		purchases:     map[string]model.Purchase{},
	}
}

func (f *fakeBillingStore) UpsertSubscription(ctx context.Context, sub model.Subscription) error {
	if f.failUpserts > 0 {
		f.failUpserts--
		return cr_errors.ErrDatabaseOperation
	}
	f.subscriptions[sub.ID] = sub
	return nil
}

func (f *fakeBillingStore) MarkSubscriptionCanceled(ctx context.Context, subscriptionID string) error {
	if sub, ok := f.subscriptions[subscriptionID]; ok {
		sub.Status = "canceled"
		f.subscriptions[subscriptionID] = sub
	}
	return nil
}

func (f *fakeBillingStore) GetSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	sub, ok := f.subscriptions[subscriptionID]
	if !ok {
		return nil, cr_errors.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (f *fakeBillingStore) UpsertPurchase(ctx context.Context, purchase model.Purchase) error {
	if f.failUpserts > 0 {
		f.failUpserts--
		return cr_errors.ErrDatabaseOperation
	}
	f.purchases[purchase.ID] = purchase
	return nil
}

type memoryEventDedup struct {
	seen map[string]bool
}

func newMemoryEventDedup() *memoryEventDedup {
	return &memoryEventDedup{seen: map[string]bool{}}
}

func (m *memoryEventDedup) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

func (m *memoryEventDedup) Forget(ctx context.Context, eventID string) error {
	delete(m.seen, eventID)
	return nil
}

func subscriptionEvent(id string) model.BillingEvent {
	return model.BillingEvent{
		ID:   id,
		Type: model.EventSubscriptionCreated,
		Data: json.RawMessage(`{"subscription_id":"sub_1","plan":"pro","status":"active"}`),
	}
}

func TestBillingServiceHandleEvent(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()

	ctx := context.Background()
	notificationSvc := util.NewNotificationService("nats://127.0.0.1:4222")
	defer notificationSvc.Close()

	newService := func(store *fakeBillingStore, dedup *memoryEventDedup) *BillingService {
		return NewBillingService(store, dedup, notificationSvc, util.NewEventBus())
	}

	t.Run("FirstDeliveryAppliesUpsert", func(t *testing.T) {
		store := newFakeBillingStore()
		service := newService(store, newMemoryEventDedup())

		assert.NoError(t, service.HandleEvent(ctx, subscriptionEvent("evt_1")))
		assert.Contains(t, store.subscriptions, "sub_1")
	})

	t.Run("DuplicateDeliveryIsSkipped", func(t *testing.T) {
		store := newFakeBillingStore()
		service := newService(store, newMemoryEventDedup())

		assert.NoError(t, service.HandleEvent(ctx, subscriptionEvent("evt_1")))
		err := service.HandleEvent(ctx, subscriptionEvent("evt_1"))
		assert.ErrorIs(t, err, cr_errors.ErrDuplicateEvent)
		assert.Len(t, store.subscriptions, 1)
	})

	t.Run("FailedDeliveryIsRetriable", func(t *testing.T) {
		store := newFakeBillingStore()
		store.failUpserts = 1
		dedup := newMemoryEventDedup()
		service := newService(store, dedup)

		err := service.HandleEvent(ctx, subscriptionEvent("evt_1"))
		assert.ErrorIs(t, err, cr_errors.ErrDatabaseOperation)
		assert.NotContains(t, store.subscriptions, "sub_1")
		assert.False(t, dedup.seen["evt_1"])

		// The provider redelivers the same event id; the effects must land.
		assert.NoError(t, service.HandleEvent(ctx, subscriptionEvent("evt_1")))
		assert.Contains(t, store.subscriptions, "sub_1")
	})

	t.Run("DeletedEventMarksCanceled", func(t *testing.T) {
		store := newFakeBillingStore()
		service := newService(store, newMemoryEventDedup())

		assert.NoError(t, service.HandleEvent(ctx, subscriptionEvent("evt_1")))

		cancel := model.BillingEvent{
			ID:   "evt_2",
			Type: model.EventSubscriptionDeleted,
			Data: json.RawMessage(`{"subscription_id":"sub_1"}`),
		}
		assert.NoError(t, service.HandleEvent(ctx, cancel))
		assert.Equal(t, "canceled", store.subscriptions["sub_1"].Status)
	})

	t.Run("CheckoutEventRecordsPurchase", func(t *testing.T) {
		store := newFakeBillingStore()
		service := newService(store, newMemoryEventDedup())

		event := model.BillingEvent{
			ID:   "evt_3",
			Type: model.EventCheckoutCompleted,
			Data: json.RawMessage(`{"purchase_id":"pur_1","amount_cents":4900,"currency":"usd"}`),
		}
		assert.NoError(t, service.HandleEvent(ctx, event))
		assert.Contains(t, store.purchases, "pur_1")
	})

	t.Run("UnknownEventTypeAcknowledged", func(t *testing.T) {
		store := newFakeBillingStore()
		service := newService(store, newMemoryEventDedup())

		event := model.BillingEvent{
			ID:   "evt_4",
			Type: "invoice.finalized",
			Data: json.RawMessage(`{"invoice_id":"inv_1"}`),
		}
		assert.NoError(t, service.HandleEvent(ctx, event))
		assert.Empty(t, store.subscriptions)
		assert.Empty(t, store.purchases)
	})

	t.Run("EmptyEventIDRejected", func(t *testing.T) {
		store := newFakeBillingStore()
		dedup := newMemoryEventDedup()
		service := newService(store, dedup)

		err := service.HandleEvent(ctx, model.BillingEvent{Type: model.EventSubscriptionCreated})
		assert.ErrorIs(t, err, cr_errors.ErrInvalidEventPayload)
		assert.Empty(t, dedup.seen)
	})
}
