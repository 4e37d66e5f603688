// model/billing_test.go
package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillingEventPayload(t *testing.T) {
	t.Run("SubscriptionEvent", func(t *testing.T) {
		event := BillingEvent{
			Type: EventSubscriptionCreated,
			Data: json.RawMessage(`{"subscription_id":"sub_1","plan":"pro","status":"active"}`),
		}

		payload, err := event.Payload()
		assert.NoError(t, err)

		sub, ok := payload.(SubscriptionPayload)
		assert.True(t, ok)
		assert.Equal(t, "sub_1", sub.SubscriptionID)
		assert.Equal(t, "pro", sub.Plan)
	})

	t.Run("CheckoutEvent", func(t *testing.T) {
		event := BillingEvent{
			Type: EventCheckoutCompleted,
			Data: json.RawMessage(`{"purchase_id":"pur_1","amount_cents":4900,"currency":"usd"}`),
		}

		payload, err := event.Payload()
		assert.NoError(t, err)

		checkout, ok := payload.(CheckoutPayload)
		assert.True(t, ok)
		assert.Equal(t, int64(4900), checkout.AmountCents)
	})

	t.Run("UnknownEventFallsBackToOpaque", func(t *testing.T) {
		event := BillingEvent{
			Type: "invoice.finalized",
			Data: json.RawMessage(`{"invoice_id":"inv_1"}`),
		}

		payload, err := event.Payload()
		assert.NoError(t, err)

		opaque, ok := payload.(OpaquePayload)
		assert.True(t, ok)
		assert.JSONEq(t, `{"invoice_id":"inv_1"}`, string(opaque.Raw))
	})

	t.Run("MalformedDataIsAnError", func(t *testing.T) {
		event := BillingEvent{
			Type: EventSubscriptionUpdated,
			Data: json.RawMessage(`{"subscription_id":`),
		}

		_, err := event.Payload()
		assert.Error(t, err)
	})
}
