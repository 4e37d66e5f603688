// controller/agent_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	"github.com/controlroom-hq/control-room/api/model"
	"github.com/controlroom-hq/control-room/api/service"
	"github.com/controlroom-hq/control-room/api/util"
	helper_util "github.com/controlroom-hq/control-room/api/util/helper"
)

type AgentController struct {
	agentService service.IAgentService
}

func NewAgentController(agentService service.IAgentService) *AgentController {
	return &AgentController{
		agentService: agentService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AgentController) RegisterRoutes(r *gin.RouterGroup) {
	agents := r.Group("/agents")
	{
		agents.POST("", ac.RegisterAgent)
		agents.GET("/:id", ac.GetAgent)
		agents.GET("", ac.ListAgents)
		agents.PATCH("/:id/status", ac.UpdateAgentStatus)
	}
}

// RegisterAgent endpoint
func (ac *AgentController) RegisterAgent(c *gin.Context) {
	var agent model.Agent
	if err := c.ShouldBindJSON(&agent); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid agent data", cr_errors.ErrInvalidAgentData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", cr_errors.ErrUnauthorized)
		return
	}

	registered, err := ac.agentService.RegisterAgent(c, agent, userID)
	if err != nil {
		if errors.Is(err, cr_errors.ErrInvalidAgentData) {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid agent data", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to register agent", err)
		}
		return
	}

	c.JSON(http.StatusCreated, registered)
}

// GetAgent endpoint
func (ac *AgentController) GetAgent(c *gin.Context) {
	agentID := c.Param("id")

	agent, err := ac.agentService.GetAgent(c, agentID)
	if err != nil {
		if errors.Is(err, cr_errors.ErrAgentNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Agent not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve agent", err)
		}
		return
	}

	c.JSON(http.StatusOK, agent)
}

// ListAgents endpoint
func (ac *AgentController) ListAgents(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", cr_errors.ErrInvalidPagination)
		return
	}
	workspaceID := c.Query("workspaceId")

	agents, err := ac.agentService.ListAgents(c, workspaceID, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list agents", err)
		return
	}

	c.JSON(http.StatusOK, agents)
}

// UpdateAgentStatus endpoint
func (ac *AgentController) UpdateAgentStatus(c *gin.Context) {
	agentID := c.Param("id")

	var body struct {
		Status model.AgentStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid agent data", err)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	agent, err := ac.agentService.UpdateAgentStatus(c, agentID, body.Status, userID)
	if err != nil {
		switch {
		case errors.Is(err, cr_errors.ErrInvalidAgentState):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid agent status", err)
		case errors.Is(err, cr_errors.ErrAgentNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Agent not found", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update agent status", err)
		}
		return
	}

	c.JSON(http.StatusOK, agent)
}
