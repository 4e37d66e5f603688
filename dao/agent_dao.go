// dao/agent_dao.go
package dao

import (
	"context"
	"errors"
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

type AgentDAO struct {
	Pool         *pgxpool.Pool
	AuditService audit.Service
}

func NewAgentDAO(pool *pgxpool.Pool, auditService audit.Service) *AgentDAO {
	return &AgentDAO{Pool: pool, AuditService: auditService}
}

func (dao *AgentDAO) RegisterAgent(ctx context.Context, agent model.Agent, userID string) (string, error) {
	if agent.ID == "" {
		agent.ID = uuid.New().String()
	}
	if agent.Status == "" {
		agent.Status = model.AgentStopped
	}

	_, err := dao.Pool.Exec(ctx, `
		INSERT INTO agents (id, workspace_id, name, description, status, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, agent.ID, agent.WorkspaceID, agent.Name, agent.Description, agent.Status,
		agent.LastSeen, agent.CreatedAt, agent.UpdatedAt)
	if err != nil {
		logger.Error("Failed to register agent", zap.Error(err), zap.String("agentName", agent.Name))
		return "", cr_errors.ErrDatabaseOperation
	}

	auditLog := audit.AuditLog{
		Timestamp:   time.Now(),
		UserID:      userID,
		WorkspaceID: agent.WorkspaceID,
		Action:      audit.ActionRegisterAgent,
		ResourceID:  agent.ID,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return agent.ID, nil
}

func (dao *AgentDAO) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	var agent model.Agent
	err := dao.Pool.QueryRow(ctx, `
		SELECT id, workspace_id, name, description, status, last_seen, created_at, updated_at
		FROM agents WHERE id = $1
	`, agentID).Scan(&agent.ID, &agent.WorkspaceID, &agent.Name, &agent.Description,
		&agent.Status, &agent.LastSeen, &agent.CreatedAt, &agent.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cr_errors.ErrAgentNotFound
	}
	if err != nil {
		logger.Error("Failed to get agent", zap.Error(err), zap.String("agentID", agentID))
		return nil, cr_errors.ErrDatabaseOperation
	}
	return &agent, nil
}

func (dao *AgentDAO) ListAgents(ctx context.Context, workspaceID string, limit int, offset int) ([]*model.Agent, error) {
	rows, err := dao.Pool.Query(ctx, `
		SELECT id, workspace_id, name, description, status, last_seen, created_at, updated_at
		FROM agents
		WHERE ($1 = '' OR workspace_id = $1)
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`, workspaceID, limit, offset)
	if err != nil {
		logger.Error("Failed to list agents", zap.Error(err))
		return nil, cr_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	agents := []*model.Agent{}
	for rows.Next() {
		var agent model.Agent
		if err := rows.Scan(&agent.ID, &agent.WorkspaceID, &agent.Name, &agent.Description,
			&agent.Status, &agent.LastSeen, &agent.CreatedAt, &agent.UpdatedAt); err != nil {
			return nil, cr_errors.ErrDatabaseOperation
		}
		agents = append(agents, &agent)
	}
	if rows.Err() != nil {
		return nil, cr_errors.ErrDatabaseOperation
	}
	return agents, nil
}

func (dao *AgentDAO) UpdateAgentStatus(ctx context.Context, agentID string, status model.AgentStatus, userID string) (*model.Agent, error) {
	var agent model.Agent
	err := dao.Pool.QueryRow(ctx, `
		UPDATE agents SET status = $1, last_seen = $2, updated_at = $2
		WHERE id = $3
		RETURNING id, workspace_id, name, description, status, last_seen, created_at, updated_at
	`, status, time.Now(), agentID).Scan(&agent.ID, &agent.WorkspaceID, &agent.Name,
		&agent.Description, &agent.Status, &agent.LastSeen, &agent.CreatedAt, &agent.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cr_errors.ErrAgentNotFound
	}
	if err != nil {
		logger.Error("Failed to update agent status", zap.Error(err), zap.String("agentID", agentID))
		return nil, cr_errors.ErrDatabaseOperation
	}

	auditLog := audit.AuditLog{
		Timestamp:   time.Now(),
		UserID:      userID,
		WorkspaceID: agent.WorkspaceID,
		Action:      audit.ActionAgentStatus,
		ResourceID:  agentID,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return &agent, nil
}
