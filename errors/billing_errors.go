// errors/billing_errors.go
package errors

import "errors"

var (
	ErrInvalidSignature     = errors.New("webhook signature verification failed")
	ErrInvalidEventPayload  = errors.New("invalid webhook event payload")
	ErrDuplicateEvent       = errors.New("webhook event already processed")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
