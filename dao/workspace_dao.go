// dao/workspace_dao.go
package dao

import (
	"context"
	"encoding/json"
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

type WorkspaceDAO struct {
	Pool         *pgxpool.Pool
	AuditService audit.Service
}

func NewWorkspaceDAO(pool *pgxpool.Pool, auditService audit.Service) *WorkspaceDAO {
	return &WorkspaceDAO{Pool: pool, AuditService: auditService}
}

// CreateWorkspace inserts a workspace and its owning member in one transaction.
func (dao *WorkspaceDAO) CreateWorkspace(ctx context.Context, workspace model.Workspace, ownerID, ownerEmail string) (string, error) {
	if workspace.ID == "" {
		workspace.ID = uuid.New().String()
	}
	if workspace.Plan == "" {
		workspace.Plan = "free"
	}

	tx, err := dao.Pool.Begin(ctx)
	if err != nil {
		return "", cr_errors.ErrDatabaseOperation
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO workspaces (id, name, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, workspace.ID, workspace.Name, workspace.Plan, workspace.CreatedAt, workspace.UpdatedAt)
	if err != nil {
		logger.Error("Failed to create workspace", zap.Error(err), zap.String("name", workspace.Name))
		return "", cr_errors.ErrDatabaseOperation
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, workspace.ID, ownerID, ownerEmail, model.RoleOwner, workspace.CreatedAt, workspace.UpdatedAt)
	if err != nil {
		logger.Error("Failed to create owner membership", zap.Error(err), zap.String("workspaceID", workspace.ID))
		return "", cr_errors.ErrDatabaseOperation
	}

	if err := tx.Commit(ctx); err != nil {
		return "", cr_errors.ErrDatabaseOperation
	}

	details, _ := json.Marshal(workspace)
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        ownerID,
		WorkspaceID:   workspace.ID,
		Action:        audit.ActionCreateWorkspace,
		ResourceID:    workspace.ID,
		ChangeDetails: details,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return workspace.ID, nil
}

func (dao *WorkspaceDAO) GetWorkspace(ctx context.Context, workspaceID string) (*model.Workspace, error) {
	var workspace model.Workspace
	err := dao.Pool.QueryRow(ctx, `
		SELECT id, name, plan, created_at, updated_at FROM workspaces WHERE id = $1
	`, workspaceID).Scan(&workspace.ID, &workspace.Name, &workspace.Plan, &workspace.CreatedAt, &workspace.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cr_errors.ErrWorkspaceNotFound
	}
	if err != nil {
		logger.Error("Failed to get workspace", zap.Error(err), zap.String("workspaceID", workspaceID))
		return nil, cr_errors.ErrDatabaseOperation
	}
	return &workspace, nil
}

func (dao *WorkspaceDAO) ListWorkspaces(ctx context.Context, limit int, offset int) ([]*model.Workspace, error) {
	rows, err := dao.Pool.Query(ctx, `
		SELECT id, name, plan, created_at, updated_at FROM workspaces
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		logger.Error("Failed to list workspaces", zap.Error(err))
		return nil, cr_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	workspaces := []*model.Workspace{}
	for rows.Next() {
		var workspace model.Workspace
		if err := rows.Scan(&workspace.ID, &workspace.Name, &workspace.Plan, &workspace.CreatedAt, &workspace.UpdatedAt); err != nil {
			return nil, cr_errors.ErrDatabaseOperation
		}
		workspaces = append(workspaces, &workspace)
	}
	if rows.Err() != nil {
		return nil, cr_errors.ErrDatabaseOperation
	}
	return workspaces, nil
}

func (dao *WorkspaceDAO) DeleteWorkspace(ctx context.Context, workspaceID string, userID string) error {
	tag, err := dao.Pool.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, workspaceID)
	if err != nil {
		logger.Error("Failed to delete workspace", zap.Error(err), zap.String("workspaceID", workspaceID))
		return cr_errors.ErrDatabaseOperation
	}
	if tag.RowsAffected() == 0 {
		return cr_errors.ErrWorkspaceNotFound
	}

	auditLog := audit.AuditLog{
		Timestamp:  time.Now(),
		UserID:     userID,
		Action:     audit.ActionDeleteWorkspace,
		ResourceID: workspaceID,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

// AddMember inserts a workspace membership. Adding an existing member is a
// conflict.
func (dao *WorkspaceDAO) AddMember(ctx context.Context, member model.WorkspaceMember, userID string) error {
	_, err := dao.Pool.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, member.WorkspaceID, member.UserID, member.Email, member.Role, member.CreatedAt, member.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return cr_errors.ErrMemberConflict
		}
		logger.Error("Failed to add member", zap.Error(err),
			zap.String("workspaceID", member.WorkspaceID),
			zap.String("memberID", member.UserID))
		return cr_errors.ErrDatabaseOperation
	}

	details, _ := json.Marshal(member)
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        userID,
		WorkspaceID:   member.WorkspaceID,
		Action:        audit.ActionAddMember,
		ResourceID:    member.UserID,
		ChangeDetails: details,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

func (dao *WorkspaceDAO) UpdateMemberRole(ctx context.Context, workspaceID, memberID string, role model.Role, userID string) error {
	tag, err := dao.Pool.Exec(ctx, `
		UPDATE workspace_members SET role = $1, updated_at = $2
		WHERE workspace_id = $3 AND user_id = $4
	`, role, time.Now(), workspaceID, memberID)
	if err != nil {
		logger.Error("Failed to update member role", zap.Error(err),
			zap.String("workspaceID", workspaceID),
			zap.String("memberID", memberID))
		return cr_errors.ErrDatabaseOperation
	}
	if tag.RowsAffected() == 0 {
		return cr_errors.ErrMemberNotFound
	}

	auditLog := audit.AuditLog{
		Timestamp:   time.Now(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Action:      audit.ActionUpdateMember,
		ResourceID:  memberID,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

func (dao *WorkspaceDAO) RemoveMember(ctx context.Context, workspaceID, memberID string, userID string) error {
	tag, err := dao.Pool.Exec(ctx, `
		DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, memberID)
	if err != nil {
		logger.Error("Failed to remove member", zap.Error(err),
			zap.String("workspaceID", workspaceID),
			zap.String("memberID", memberID))
		return cr_errors.ErrDatabaseOperation
	}
	if tag.RowsAffected() == 0 {
		return cr_errors.ErrMemberNotFound
	}

	auditLog := audit.AuditLog{
		Timestamp:   time.Now(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Action:      audit.ActionRemoveMember,
		ResourceID:  memberID,
	}
	if err := dao.AuditService.Record(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}
	return nil
}

func (dao *WorkspaceDAO) ListMembers(ctx context.Context, workspaceID string) ([]*model.WorkspaceMember, error) {
	rows, err := dao.Pool.Query(ctx, `
		SELECT workspace_id, user_id, email, role, created_at, updated_at
		FROM workspace_members WHERE workspace_id = $1
		ORDER BY created_at
	`, workspaceID)
	if err != nil {
		logger.Error("Failed to list members", zap.Error(err), zap.String("workspaceID", workspaceID))
		return nil, cr_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	members := []*model.WorkspaceMember{}
	for rows.Next() {
		var member model.WorkspaceMember
		if err := rows.Scan(&member.WorkspaceID, &member.UserID, &member.Email, &member.Role, &member.CreatedAt, &member.UpdatedAt); err != nil {
			return nil, cr_errors.ErrDatabaseOperation
		}
		members = append(members, &member)
	}
	if rows.Err() != nil {
		return nil, cr_errors.ErrDatabaseOperation
	}
	return members, nil
}

// GetMemberRole resolves a user's role inside a workspace.
func (dao *WorkspaceDAO) GetMemberRole(ctx context.Context, workspaceID, memberID string) (model.Role, error) {
	var role model.Role
	err := dao.Pool.QueryRow(ctx, `
		SELECT role FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, memberID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", cr_errors.ErrMemberNotFound
	}
	if err != nil {
		return "", cr_errors.ErrDatabaseOperation
	}
	return role, nil
}
