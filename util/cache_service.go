// util/cache_service.go

package util

import (
	"context"

	"github.com/controlroom-hq/control-room/api/db"
	"github.com/controlroom-hq/control-room/api/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetPolicy(ctx context.Context, policyID string) (*model.Policy, error) {
	return db.GetCachedPolicy(ctx, policyID)
}

func (c *CacheService) SetPolicy(ctx context.Context, policy model.Policy) error {
	return db.CachePolicy(ctx, &policy)
}

func (c *CacheService) DeletePolicy(ctx context.Context, policyID string) error {
	return db.DeleteCachedPolicy(ctx, policyID)
}

func (c *CacheService) SetWorkspace(ctx context.Context, workspace model.Workspace) error {
	return db.CacheWorkspace(ctx, &workspace)
}

func (c *CacheService) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	return db.DeleteCachedWorkspace(ctx, workspaceID)
}

func (c *CacheService) GetWorkspace(ctx context.Context, workspaceID string) (*model.Workspace, error) {
	return db.GetCachedWorkspace(ctx, workspaceID)
}

func (c *CacheService) SetAgent(ctx context.Context, agent model.Agent) error {
	return db.CacheAgent(ctx, &agent)
}

func (c *CacheService) DeleteAgent(ctx context.Context, agentID string) error {
	return db.DeleteCachedAgent(ctx, agentID)
}

func (c *CacheService) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	return db.GetCachedAgent(ctx, agentID)
}
