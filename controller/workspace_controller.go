// controller/workspace_controller.go
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

type WorkspaceController struct {
	workspaceService service.IWorkspaceService
}

func NewWorkspaceController(workspaceService service.IWorkspaceService) *WorkspaceController {
	return &WorkspaceController{
		workspaceService: workspaceService,
	}
}

// RegisterRoutes registers the API routes
func (wc *WorkspaceController) RegisterRoutes(r *gin.RouterGroup) {
	workspaces := r.Group("/workspaces")
	{
		workspaces.POST("", wc.CreateWorkspace)
		workspaces.GET("/:id", wc.GetWorkspace)
		workspaces.GET("", wc.ListWorkspaces)
		workspaces.DELETE("/:id", wc.DeleteWorkspace)
		workspaces.POST("/:id/members", wc.AddMember)
		workspaces.GET("/:id/members", wc.ListMembers)
		workspaces.PATCH("/:id/members/:userId", wc.UpdateMemberRole)
		workspaces.DELETE("/:id/members/:userId", wc.RemoveMember)
	}
}

// CreateWorkspace endpoint
func (wc *WorkspaceController) CreateWorkspace(c *gin.Context) {
	var workspace model.Workspace
	if err := c.ShouldBindJSON(&workspace); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid workspace data", cr_errors.ErrInvalidWorkspace)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", cr_errors.ErrUnauthorized)
		return
	}
	userEmail := c.GetString("userEmail")

	created, err := wc.workspaceService.CreateWorkspace(c, workspace, userID, userEmail)
	if err != nil {
		if errors.Is(err, cr_errors.ErrInvalidWorkspace) {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid workspace data", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create workspace", err)
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetWorkspace endpoint
func (wc *WorkspaceController) GetWorkspace(c *gin.Context) {
	workspaceID := c.Param("id")

	workspace, err := wc.workspaceService.GetWorkspace(c, workspaceID)
	if err != nil {
		if errors.Is(err, cr_errors.ErrWorkspaceNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Workspace not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve workspace", err)
		}
		return
	}

	c.JSON(http.StatusOK, workspace)
}

// ListWorkspaces endpoint
func (wc *WorkspaceController) ListWorkspaces(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", cr_errors.ErrInvalidPagination)
		return
	}

	workspaces, err := wc.workspaceService.ListWorkspaces(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list workspaces", err)
		return
	}

	c.JSON(http.StatusOK, workspaces)
}

// DeleteWorkspace endpoint
func (wc *WorkspaceController) DeleteWorkspace(c *gin.Context) {
	workspaceID := c.Param("id")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := wc.workspaceService.DeleteWorkspace(c, workspaceID, userID); err != nil {
		switch {
		case errors.Is(err, cr_errors.ErrWorkspaceNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Workspace not found", err)
		case errors.Is(err, cr_errors.ErrForbiddenRole):
			util.RespondWithError(c, http.StatusForbidden, "Only the owner can delete a workspace", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete workspace", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMember endpoint
func (wc *WorkspaceController) AddMember(c *gin.Context) {
	var member model.WorkspaceMember
	if err := c.ShouldBindJSON(&member); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid member data", err)
		return
	}
	member.WorkspaceID = c.Param("id")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := wc.workspaceService.AddMember(c, member, userID); err != nil {
		switch {
		case errors.Is(err, cr_errors.ErrInvalidRole):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid role", err)
		case errors.Is(err, cr_errors.ErrWorkspaceNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Workspace not found", err)
		case errors.Is(err, cr_errors.ErrMemberConflict):
			util.RespondWithError(c, http.StatusConflict, "Member already exists", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to add member", err)
		}
		return
	}

	c.Status(http.StatusCreated)
}

// ListMembers endpoint
func (wc *WorkspaceController) ListMembers(c *gin.Context) {
	workspaceID := c.Param("id")

	members, err := wc.workspaceService.ListMembers(c, workspaceID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list members", err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// UpdateMemberRole endpoint
func (wc *WorkspaceController) UpdateMemberRole(c *gin.Context) {
	workspaceID := c.Param("id")
	memberID := c.Param("userId")

	var body struct {
		Role model.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid member data", err)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := wc.workspaceService.UpdateMemberRole(c, workspaceID, memberID, body.Role, userID); err != nil {
		switch {
		case errors.Is(err, cr_errors.ErrInvalidRole):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid role", err)
		case errors.Is(err, cr_errors.ErrMemberNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Member not found", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update member role", err)
		}
		return
	}

	c.Status(http.StatusOK)
}

// RemoveMember endpoint
func (wc *WorkspaceController) RemoveMember(c *gin.Context) {
	workspaceID := c.Param("id")
	memberID := c.Param("userId")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := wc.workspaceService.RemoveMember(c, workspaceID, memberID, userID); err != nil {
		switch {
		case errors.Is(err, cr_errors.ErrMemberNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Member not found", err)
		case errors.Is(err, cr_errors.ErrForbiddenRole):
			util.RespondWithError(c, http.StatusForbidden, "The workspace owner cannot be removed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to remove member", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
