// service/agent_service.go
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

// IAgentService defines the interface for agent registry operations
type IAgentService interface {
	RegisterAgent(ctx context.Context, agent model.Agent, userID string) (*model.Agent, error)
	GetAgent(ctx context.Context, agentID string) (*model.Agent, error)
	ListAgents(ctx context.Context, workspaceID string, limit int, offset int) ([]*model.Agent, error)
	UpdateAgentStatus(ctx context.Context, agentID string, status model.AgentStatus, userID string) (*model.Agent, error)
}

// AgentService handles business logic for the agent registry
type AgentService struct {
	agentDAO        *dao.AgentDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IAgentService = &AgentService{}

// NewAgentService creates a new instance of AgentService
func NewAgentService(agentDAO *dao.AgentDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *AgentService {
	service := &AgentService{
		agentDAO:        agentDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("agent.status", service.handleAgentStatus)

	return service
}

func (s *AgentService) handleAgentStatus(ctx context.Context, event util.Event) error {
	agent, ok := event.Payload.(model.Agent)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	logger.Info("Agent status event received",
		zap.String("agentID", agent.ID),
		zap.String("status", string(agent.Status)))

	if err := s.notificationSvc.NotifyAgentChange(ctx, "status", agent); err != nil {
		logger.Warn("Failed to send agent status notification", zap.Error(err), zap.String("agentID", agent.ID))
	}
	return nil
}

// RegisterAgent registers a deployed agent in the registry
func (s *AgentService) RegisterAgent(ctx context.Context, agent model.Agent, userID string) (*model.Agent, error) {
	if err := s.validationUtil.ValidateAgent(agent); err != nil {
		return nil, err
	}

	agent.CreatedAt = time.Now()
	agent.UpdatedAt = time.Now()

	agentID, err := s.agentDAO.RegisterAgent(ctx, agent, userID)
	if err != nil {
		logger.Error("Error registering agent", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	agent.ID = agentID

	if err := s.cacheService.SetAgent(ctx, agent); err != nil {
		logger.Warn("Failed to cache agent", zap.Error(err), zap.String("agentID", agentID))
	}

	logger.Info("Agent registered successfully", zap.String("agentID", agentID), zap.String("userID", userID))
	return &agent, nil
}

// GetAgent retrieves an agent by its ID
func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	cachedAgent, err := s.cacheService.GetAgent(ctx, agentID)
	if err == nil && cachedAgent != nil {
		return cachedAgent, nil
	}

	agent, err := s.agentDAO.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetAgent(ctx, *agent); err != nil {
		logger.Warn("Failed to cache agent", zap.Error(err), zap.String("agentID", agentID))
	}

	return agent, nil
}

// ListAgents lists agents, optionally scoped to one workspace
func (s *AgentService) ListAgents(ctx context.Context, workspaceID string, limit int, offset int) ([]*model.Agent, error) {
	agents, err := s.agentDAO.ListAgents(ctx, workspaceID, limit, offset)
	if err != nil {
		logger.Error("Error listing agents", zap.Error(err))
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

// UpdateAgentStatus records a new runtime status for an agent
func (s *AgentService) UpdateAgentStatus(ctx context.Context, agentID string, status model.AgentStatus, userID string) (*model.Agent, error) {
	if !status.Valid() {
		return nil, cr_errors.ErrInvalidAgentState
	}

	agent, err := s.agentDAO.UpdateAgentStatus(ctx, agentID, status, userID)
	if err != nil {
		logger.Error("Error updating agent status", zap.Error(err), zap.String("agentID", agentID))
		return nil, err
	}

	if err := s.cacheService.SetAgent(ctx, *agent); err != nil {
		logger.Warn("Failed to update agent in cache", zap.Error(err), zap.String("agentID", agentID))
	}

	s.eventBus.Publish(ctx, "agent.status", *agent)

	return agent, nil
}
