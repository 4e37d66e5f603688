// dao/billing_dao.go
package dao

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/controlroom-hq/control-room/api/audit"
	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	logger "github.com/controlroom-hq/control-room/api/logging"
	"github.com/controlroom-hq/control-room/api/model"
)

type BillingDAO struct {
	Pool         *pgxpool.Pool
	AuditService audit.Service
}

func NewBillingDAO(pool *pgxpool.Pool, auditService audit.Service) *BillingDAO {
	return &BillingDAO{Pool: pool, AuditService: auditService}
}

// UpsertSubscription writes subscription state keyed by the provider's id, so
// replayed deliveries converge on the same row instead of double-applying.
func (dao *BillingDAO) UpsertSubscription(ctx context.Context, sub model.Subscription) error {
	_, err := dao.Pool.Exec(ctx, `
		INSERT INTO subscriptions (id, customer_id, workspace_id, plan, status, period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			period_end = EXCLUDED.period_end,
			updated_at = EXCLUDED.updated_at
	`, sub.ID, sub.CustomerID, sub.WorkspaceID, sub.Plan, sub.Status, sub.PeriodEnd, time.Now())
	if err != nil {
		logger.Error("Failed to upsert subscription", zap.Error(err), zap.String("subscriptionID", sub.ID))
		return cr_errors.ErrDatabaseOperation
	}

	details, _ := json.Marshal(sub)
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		WorkspaceID:   sub.WorkspaceID,
		Action:        audit.ActionBillingEvent,
		ResourceID:    sub.ID,
		ChangeDetails: details,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

// MarkSubscriptionCanceled flips a subscription to canceled. Missing rows are
// tolerated: a deletion event may arrive before its creation under
// at-least-once delivery, and canceling nothing is a no-op.
func (dao *BillingDAO) MarkSubscriptionCanceled(ctx context.Context, subscriptionID string) error {
	_, err := dao.Pool.Exec(ctx, `
		UPDATE subscriptions SET status = 'canceled', updated_at = $1 WHERE id = $2
	`, time.Now(), subscriptionID)
	if err != nil {
		logger.Error("Failed to cancel subscription", zap.Error(err), zap.String("subscriptionID", subscriptionID))
		return cr_errors.ErrDatabaseOperation
	}
	return nil
}

func (dao *BillingDAO) GetSubscription(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := dao.Pool.QueryRow(ctx, `
		SELECT id, customer_id, workspace_id, plan, status, period_end, created_at, updated_at
		FROM subscriptions WHERE id = $1
	`, subscriptionID).Scan(&sub.ID, &sub.CustomerID, &sub.WorkspaceID, &sub.Plan,
		&sub.Status, &sub.PeriodEnd, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cr_errors.ErrSubscriptionNotFound
	}
	if err != nil {
		logger.Error("Failed to get subscription", zap.Error(err), zap.String("subscriptionID", subscriptionID))
		return nil, cr_errors.ErrDatabaseOperation
	}
	return &sub, nil
}

// UpsertPurchase records a one-off purchase keyed by the provider's id.
func (dao *BillingDAO) UpsertPurchase(ctx context.Context, purchase model.Purchase) error {
	_, err := dao.Pool.Exec(ctx, `
		INSERT INTO purchases (id, customer_id, workspace_id, listing_id, amount_cents, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, purchase.ID, purchase.CustomerID, purchase.WorkspaceID, purchase.ListingID,
		purchase.AmountCents, purchase.Currency, time.Now())
	if err != nil {
		logger.Error("Failed to upsert purchase", zap.Error(err), zap.String("purchaseID", purchase.ID))
		return cr_errors.ErrDatabaseOperation
	}

	details, _ := json.Marshal(purchase)
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		WorkspaceID:   purchase.WorkspaceID,
		Action:        audit.ActionBillingEvent,
		ResourceID:    purchase.ID,
		ChangeDetails: details,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}
