// model/billing.go
package model

import (
	"encoding/json"
	"time"
)

// BillingEventType is the provider-assigned type of a webhook event.
type BillingEventType string

const (
	EventSubscriptionCreated BillingEventType = "subscription.created"
	EventSubscriptionUpdated BillingEventType = "subscription.updated"
	EventSubscriptionDeleted BillingEventType = "subscription.deleted"
	EventCheckoutCompleted   BillingEventType = "checkout.completed"
)

// BillingEvent is the envelope delivered by the payment provider. Data is
// decoded into one of the known payload shapes by Payload; unknown event
// types keep the raw JSON so the handler stays total over the union.
type BillingEvent struct {
	ID        string           `json:"id"`
	Type      BillingEventType `json:"type"`
	CreatedAt time.Time        `json:"created_at"`
	Data      json.RawMessage  `json:"data"`
}

// SubscriptionPayload is the data shape of subscription.* events.
type SubscriptionPayload struct {
	SubscriptionID string    `json:"subscription_id"`
	CustomerID     string    `json:"customer_id"`
	WorkspaceID    string    `json:"workspace_id"`
	Plan           string    `json:"plan"`
	Status         string    `json:"status"` // "active", "past_due", "canceled"
	PeriodEnd      time.Time `json:"period_end"`
}

// CheckoutPayload is the data shape of checkout.completed events
// (one-off marketplace purchases).
type CheckoutPayload struct {
	PurchaseID  string `json:"purchase_id"`
	CustomerID  string `json:"customer_id"`
	WorkspaceID string `json:"workspace_id"`
	ListingID   string `json:"listing_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// OpaquePayload carries an event the handler does not understand. It is
// acknowledged but produces no upsert.
type OpaquePayload struct {
	Raw json.RawMessage
}

// Payload decodes the event data into its typed shape. Unknown types fall
// back to OpaquePayload rather than an error.
func (e BillingEvent) Payload() (interface{}, error) {
	switch e.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var p SubscriptionPayload
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventCheckoutCompleted:
		var p CheckoutPayload
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return OpaquePayload{Raw: e.Data}, nil
	}
}

// Subscription is the persisted subscription state, keyed by the provider's
// subscription id so repeated deliveries upsert the same row.
type Subscription struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	WorkspaceID string    `json:"workspace_id"`
	Plan        string    `json:"plan"`
	Status      string    `json:"status"`
	PeriodEnd   time.Time `json:"period_end"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Purchase is a completed one-off marketplace purchase.
type Purchase struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	WorkspaceID string    `json:"workspace_id"`
	ListingID   string    `json:"listing_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}
