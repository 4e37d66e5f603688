// service/workspace_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/controlroom-hq/control-room/api/dao"
	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	logger "github.com/controlroom-hq/control-room/api/logging"
	"github.com/controlroom-hq/control-room/api/model"
	"github.com/controlroom-hq/control-room/api/util"
)

// IWorkspaceService defines the interface for workspace operations
type IWorkspaceService interface {
	CreateWorkspace(ctx context.Context, workspace model.Workspace, userID, userEmail string) (*model.Workspace, error)
	GetWorkspace(ctx context.Context, workspaceID string) (*model.Workspace, error)
	ListWorkspaces(ctx context.Context, limit int, offset int) ([]*model.Workspace, error)
	DeleteWorkspace(ctx context.Context, workspaceID string, userID string) error
	AddMember(ctx context.Context, member model.WorkspaceMember, userID string) error
	UpdateMemberRole(ctx context.Context, workspaceID, memberID string, role model.Role, userID string) error
	RemoveMember(ctx context.Context, workspaceID, memberID string, userID string) error
	ListMembers(ctx context.Context, workspaceID string) ([]*model.WorkspaceMember, error)
	GetMemberRole(ctx context.Context, workspaceID, memberID string) (model.Role, error)
}

// WorkspaceService handles business logic for workspace operations
type WorkspaceService struct {
	workspaceDAO    *dao.WorkspaceDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IWorkspaceService = &WorkspaceService{}

// NewWorkspaceService creates a new instance of WorkspaceService
func NewWorkspaceService(workspaceDAO *dao.WorkspaceDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *WorkspaceService {
	service := &WorkspaceService{
		workspaceDAO:    workspaceDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("workspace.created", service.handleWorkspaceCreated)
	eventBus.Subscribe("workspace.deleted", service.handleWorkspaceDeleted)

	return service
}

func (s *WorkspaceService) handleWorkspaceCreated(ctx context.Context, event util.Event) error {
	workspace, ok := event.Payload.(model.Workspace)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	logger.Info("Workspace created event received", zap.String("workspaceID", workspace.ID))

	if err := s.notificationSvc.NotifyWorkspaceChange(ctx, "created", workspace); err != nil {
		logger.Warn("Failed to send workspace creation notification", zap.Error(err), zap.String("workspaceID", workspace.ID))
	}
	return nil
}

func (s *WorkspaceService) handleWorkspaceDeleted(ctx context.Context, event util.Event) error {
	workspaceID, ok := event.Payload.(string)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	logger.Info("Workspace deleted event received", zap.String("workspaceID", workspaceID))

	if err := s.notificationSvc.NotifyWorkspaceChange(ctx, "deleted", model.Workspace{ID: workspaceID}); err != nil {
		logger.Warn("Failed to send workspace deletion notification", zap.Error(err), zap.String("workspaceID", workspaceID))
	}
	return nil
}

// CreateWorkspace creates a workspace with the requesting user as owner.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, workspace model.Workspace, userID, userEmail string) (*model.Workspace, error) {
	if err := s.validationUtil.ValidateWorkspace(workspace); err != nil {
		return nil, err
	}

	workspace.CreatedAt = time.Now()
	workspace.UpdatedAt = time.Now()

	workspaceID, err := s.workspaceDAO.CreateWorkspace(ctx, workspace, userID, userEmail)
	if err != nil {
		logger.Error("Error creating workspace", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	workspace.ID = workspaceID

	if err := s.cacheService.SetWorkspace(ctx, workspace); err != nil {
		logger.Warn("Failed to cache workspace", zap.Error(err), zap.String("workspaceID", workspaceID))
	}

	s.eventBus.Publish(ctx, "workspace.created", workspace)

	logger.Info("Workspace created successfully", zap.String("workspaceID", workspaceID), zap.String("userID", userID))
	return &workspace, nil
}

// GetWorkspace retrieves a workspace by its ID
func (s *WorkspaceService) GetWorkspace(ctx context.Context, workspaceID string) (*model.Workspace, error) {
	cachedWorkspace, err := s.cacheService.GetWorkspace(ctx, workspaceID)
	if err == nil && cachedWorkspace != nil {
		return cachedWorkspace, nil
	}

	workspace, err := s.workspaceDAO.GetWorkspace(ctx, workspaceID)
	if err != nil {
		if err == cr_errors.ErrWorkspaceNotFound {
			return nil, cr_errors.ErrWorkspaceNotFound
		}
		logger.Error("Error retrieving workspace", zap.Error(err), zap.String("workspaceID", workspaceID))
		return nil, cr_errors.ErrInternalServer
	}

	if err := s.cacheService.SetWorkspace(ctx, *workspace); err != nil {
		logger.Warn("Failed to cache workspace", zap.Error(err), zap.String("workspaceID", workspaceID))
	}

	return workspace, nil
}

// ListWorkspaces retrieves all workspaces, with pagination
func (s *WorkspaceService) ListWorkspaces(ctx context.Context, limit int, offset int) ([]*model.Workspace, error) {
	workspaces, err := s.workspaceDAO.ListWorkspaces(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing workspaces", zap.Error(err))
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// DeleteWorkspace handles the deletion of a workspace. Only the owner may
// delete it.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, workspaceID string, userID string) error {
	role, err := s.workspaceDAO.GetMemberRole(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if role != model.RoleOwner {
		return cr_errors.ErrForbiddenRole
	}

	err = s.workspaceDAO.DeleteWorkspace(ctx, workspaceID, userID)
	if err != nil {
		logger.Error("Error deleting workspace", zap.Error(err), zap.String("workspaceID", workspaceID))
		return err
	}

	if err := s.cacheService.DeleteWorkspace(ctx, workspaceID); err != nil {
		logger.Warn("Failed to delete workspace from cache", zap.Error(err), zap.String("workspaceID", workspaceID))
	}

	s.eventBus.Publish(ctx, "workspace.deleted", workspaceID)

	logger.Info("Workspace deleted successfully", zap.String("workspaceID", workspaceID), zap.String("userID", userID))
	return nil
}

// AddMember adds a user to a workspace
func (s *WorkspaceService) AddMember(ctx context.Context, member model.WorkspaceMember, userID string) error {
	if err := s.validationUtil.ValidateMember(member); err != nil {
		return err
	}

	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()

	if err := s.workspaceDAO.AddMember(ctx, member, userID); err != nil {
		logger.Error("Error adding member", zap.Error(err),
			zap.String("workspaceID", member.WorkspaceID),
			zap.String("memberID", member.UserID))
		return err
	}

	logger.Info("Member added successfully",
		zap.String("workspaceID", member.WorkspaceID),
		zap.String("memberID", member.UserID),
		zap.String("role", string(member.Role)))
	return nil
}

// UpdateMemberRole changes a member's role
func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, memberID string, role model.Role, userID string) error {
	if !role.Valid() {
		return cr_errors.ErrInvalidRole
	}

	if err := s.workspaceDAO.UpdateMemberRole(ctx, workspaceID, memberID, role, userID); err != nil {
		logger.Error("Error updating member role", zap.Error(err),
			zap.String("workspaceID", workspaceID),
			zap.String("memberID", memberID))
		return err
	}

	logger.Info("Member role updated",
		zap.String("workspaceID", workspaceID),
		zap.String("memberID", memberID),
		zap.String("role", string(role)))
	return nil
}

// RemoveMember removes a user from a workspace. The owner cannot be removed;
// ownership ends only with the workspace itself.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, memberID string, userID string) error {
	role, err := s.workspaceDAO.GetMemberRole(ctx, workspaceID, memberID)
	if err != nil {
		return err
	}
	if role == model.RoleOwner {
		return cr_errors.ErrForbiddenRole
	}

	if err := s.workspaceDAO.RemoveMember(ctx, workspaceID, memberID, userID); err != nil {
		logger.Error("Error removing member", zap.Error(err),
			zap.String("workspaceID", workspaceID),
			zap.String("memberID", memberID))
		return err
	}

	logger.Info("Member removed",
		zap.String("workspaceID", workspaceID),
		zap.String("memberID", memberID))
	return nil
}

// ListMembers lists the members of a workspace
func (s *WorkspaceService) ListMembers(ctx context.Context, workspaceID string) ([]*model.WorkspaceMember, error) {
	members, err := s.workspaceDAO.ListMembers(ctx, workspaceID)
	if err != nil {
		logger.Error("Error listing members", zap.Error(err), zap.String("workspaceID", workspaceID))
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// GetMemberRole resolves a user's role inside a workspace
func (s *WorkspaceService) GetMemberRole(ctx context.Context, workspaceID, memberID string) (model.Role, error) {
	return s.workspaceDAO.GetMemberRole(ctx, workspaceID, memberID)
}
