// dao/policy_dao.go
package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/controlroom-hq/control-room/api/audit"
	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	logger "github.com/controlroom-hq/control-room/api/logging"
	"github.com/controlroom-hq/control-room/api/model"
)

type PolicyDAO struct {
	Pool         *pgxpool.Pool
	AuditService audit.Service
}

func NewPolicyDAO(pool *pgxpool.Pool, auditService audit.Service) *PolicyDAO {
	return &PolicyDAO{Pool: pool, AuditService: auditService}
}

const policyColumns = `id, workspace_id, name, description, active, trigger_type,
	trigger_value, time_window, actions, target_agents, priority, version,
	last_triggered, created_at, updated_at`

// CreatePolicy inserts a new policy row. A caller-supplied id that already
// exists is a conflict.
func (dao *PolicyDAO) CreatePolicy(ctx context.Context, policy model.Policy, userID string) (string, error) {
	start := time.Now()
	logger.Info("Creating new policy", zap.String("policyName", policy.Name))

	if policy.ID == "" {
		policy.ID = uuid.New().String() // Generate a new UUID if ID is not provided
	}

	actionsJSON, _ := json.Marshal(policy.Actions)
	if policy.TargetAgents == nil {
		policy.TargetAgents = []string{}
	}
	targetsJSON, _ := json.Marshal(policy.TargetAgents)

	_, err := dao.Pool.Exec(ctx, `
		INSERT INTO policies (id, workspace_id, name, description, active, trigger_type,
			trigger_value, time_window, actions, target_agents, priority, version,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		policy.ID, policy.WorkspaceID, policy.Name, policy.Description, policy.Active,
		policy.Trigger.Type, *policy.Trigger.Value, policy.Trigger.TimeWindow,
		actionsJSON, targetsJSON, policy.Priority, policy.Version,
		policy.CreatedAt, policy.UpdatedAt,
	)

	duration := time.Since(start)
	if err != nil {
		if isUniqueViolation(err) {
			return "", cr_errors.ErrPolicyConflict
		}
		logger.Error("Failed to create policy",
			zap.Error(err),
			zap.String("policyName", policy.Name),
			zap.Duration("duration", duration))
		return "", cr_errors.ErrDatabaseOperation
	}

	logger.Info("Policy created successfully",
		zap.String("policyID", policy.ID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        userID,
		WorkspaceID:   policy.WorkspaceID,
		Action:        audit.ActionCreatePolicy,
		ResourceID:    policy.ID,
		ChangeDetails: createChangeDetails(nil, &policy),
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return policy.ID, nil
}

// GetPolicy retrieves a policy by its ID.
func (dao *PolicyDAO) GetPolicy(ctx context.Context, policyID string) (*model.Policy, error) {
	row := dao.Pool.QueryRow(ctx, `SELECT `+policyColumns+` FROM policies WHERE id = $1`, policyID)
	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cr_errors.ErrPolicyNotFound
		}
		logger.Error("Failed to get policy", zap.Error(err), zap.String("policyID", policyID))
		return nil, cr_errors.ErrDatabaseOperation
	}
	return policy, nil
}

// ListPolicies returns policies in persistence order.
func (dao *PolicyDAO) ListPolicies(ctx context.Context, limit int, offset int) ([]*model.Policy, error) {
	rows, err := dao.Pool.Query(ctx, `
		SELECT `+policyColumns+` FROM policies
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		logger.Error("Failed to list policies", zap.Error(err))
		return nil, cr_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	return collectPolicies(rows)
}

// SearchPolicies returns policies matching the given criteria.
func (dao *PolicyDAO) SearchPolicies(ctx context.Context, criteria model.PolicySearchCriteria) ([]*model.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE 1=1`
	args := []interface{}{}
	arg := 0

	next := func() string {
		arg++
		return fmt.Sprintf("$%d", arg)
	}

	if criteria.Name != "" {
		query += ` AND name ILIKE ` + next()
		args = append(args, "%"+criteria.Name+"%")
	}
	if criteria.WorkspaceID != "" {
		query += ` AND workspace_id = ` + next()
		args = append(args, criteria.WorkspaceID)
	}
	if criteria.TriggerType != "" {
		query += ` AND trigger_type = ` + next()
		args = append(args, criteria.TriggerType)
	}
	if criteria.Priority != "" {
		query += ` AND priority = ` + next()
		args = append(args, criteria.Priority)
	}
	if criteria.Active != nil {
		query += ` AND active = ` + next()
		args = append(args, *criteria.Active)
	}
	if criteria.TargetAgent != "" {
		// Empty target list means the policy targets every agent.
		query += ` AND (target_agents = '[]'::jsonb OR target_agents ? ` + next() + `)`
		args = append(args, criteria.TargetAgent)
	}

	query += ` ORDER BY created_at`
	limit := criteria.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ` + next()
	args = append(args, limit)
	if criteria.Offset > 0 {
		query += ` OFFSET ` + next()
		args = append(args, criteria.Offset)
	}

	rows, err := dao.Pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to search policies", zap.Error(err))
		return nil, cr_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	return collectPolicies(rows)
}

// SetPolicyActive flips the activation flag and bumps the version. When
// expectedVersion is non-nil the update only applies if the stored version
// matches; a mismatch is a conflict. Trigger, actions and name are untouched.
func (dao *PolicyDAO) SetPolicyActive(ctx context.Context, policyID string, active bool, expectedVersion *int, userID string) (*model.Policy, error) {
	start := time.Now()
	logger.Info("Toggling policy activation",
		zap.String("policyID", policyID),
		zap.Bool("active", active))

	query := `
		UPDATE policies
		SET active = $1, version = version + 1, updated_at = $2
		WHERE id = $3`
	args := []interface{}{active, time.Now(), policyID}
	if expectedVersion != nil {
		query += ` AND version = $4`
		args = append(args, *expectedVersion)
	}
	query += ` RETURNING ` + policyColumns

	row := dao.Pool.QueryRow(ctx, query, args...)
	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing policy from a stale version.
			if _, getErr := dao.GetPolicy(ctx, policyID); getErr != nil {
				return nil, getErr
			}
			return nil, cr_errors.ErrPolicyConflict
		}
		logger.Error("Failed to toggle policy", zap.Error(err), zap.String("policyID", policyID))
		return nil, cr_errors.ErrDatabaseOperation
	}

	logger.Info("Policy activation updated",
		zap.String("policyID", policyID),
		zap.Bool("active", policy.Active),
		zap.Duration("duration", time.Since(start)))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        userID,
		WorkspaceID:   policy.WorkspaceID,
		Action:        audit.ActionSetPolicyActive,
		ResourceID:    policyID,
		ChangeDetails: createChangeDetails(nil, policy),
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return policy, nil
}

// DeletePolicy removes a policy. Deleting a missing id returns not-found and
// has no side effect. No guard prevents deleting an active policy.
func (dao *PolicyDAO) DeletePolicy(ctx context.Context, policyID string, userID string) error {
	start := time.Now()
	logger.Info("Deleting policy", zap.String("policyID", policyID))

	tag, err := dao.Pool.Exec(ctx, `DELETE FROM policies WHERE id = $1`, policyID)
	if err != nil {
		logger.Error("Failed to delete policy", zap.Error(err), zap.String("policyID", policyID))
		return cr_errors.ErrDatabaseOperation
	}
	if tag.RowsAffected() == 0 {
		return cr_errors.ErrPolicyNotFound
	}

	logger.Info("Policy deleted successfully",
		zap.String("policyID", policyID),
		zap.Duration("duration", time.Since(start)))

	auditLog := audit.AuditLog{
		Timestamp:  time.Now(),
		UserID:     userID,
		Action:     audit.ActionDeletePolicy,
		ResourceID: policyID,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

// TouchLastTriggered records when the evaluation engine fired a policy.
func (dao *PolicyDAO) TouchLastTriggered(ctx context.Context, policyID string, firedAt time.Time) error {
	tag, err := dao.Pool.Exec(ctx, `
		UPDATE policies SET last_triggered = $1 WHERE id = $2
	`, firedAt, policyID)
	if err != nil {
		return cr_errors.ErrDatabaseOperation
	}
	if tag.RowsAffected() == 0 {
		return cr_errors.ErrPolicyNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row rowScanner) (*model.Policy, error) {
	var policy model.Policy
	var triggerValue float64
	var actionsJSON, targetsJSON []byte

	err := row.Scan(
		&policy.ID, &policy.WorkspaceID, &policy.Name, &policy.Description,
		&policy.Active, &policy.Trigger.Type, &triggerValue,
		&policy.Trigger.TimeWindow, &actionsJSON, &targetsJSON,
		&policy.Priority, &policy.Version, &policy.LastTriggered,
		&policy.CreatedAt, &policy.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	policy.Trigger.Value = &triggerValue
	if err := json.Unmarshal(actionsJSON, &policy.Actions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(targetsJSON, &policy.TargetAgents); err != nil {
		return nil, err
	}
	if policy.TargetAgents == nil {
		policy.TargetAgents = []string{}
	}
	return &policy, nil
}

func collectPolicies(rows pgx.Rows) ([]*model.Policy, error) {
	policies := []*model.Policy{}
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, cr_errors.ErrDatabaseOperation
		}
		policies = append(policies, policy)
	}
	if rows.Err() != nil {
		return nil, cr_errors.ErrDatabaseOperation
	}
	return policies, nil
}

func createChangeDetails(oldPolicy, newPolicy *model.Policy) json.RawMessage {
	details := map[string]interface{}{}
	if oldPolicy != nil {
		details["old"] = oldPolicy
	}
	if newPolicy != nil {
		details["new"] = newPolicy
	}
	data, _ := json.Marshal(details)
	return data
}
