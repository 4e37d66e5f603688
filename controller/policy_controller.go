// controller/policy_controller.go
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

type PolicyController struct {
	policyService service.IPolicyService
}

func NewPolicyController(policyService service.IPolicyService) *PolicyController {
	return &PolicyController{
		policyService: policyService,
	}
}

// RegisterRoutes registers the API routes
func (pc *PolicyController) RegisterRoutes(r *gin.RouterGroup) {
	policies := r.Group("/policies")
	{
		policies.POST("", pc.CreatePolicy)
		policies.POST("/bulk", pc.BulkCreatePolicies)
		policies.GET("/:id", pc.GetPolicy)
		policies.GET("", pc.ListPolicies)
		policies.POST("/search", pc.SearchPolicies)
		policies.PATCH("/:id/active", pc.SetPolicyActive)
		policies.DELETE("/:id", pc.DeletePolicy)
	}
}

// viewerForbidden rejects mutation attempts by viewer-role members.
func viewerForbidden(c *gin.Context) bool {
	role := util.GetRoleFromContext(c)
	if role != "" && !model.Role(role).CanManagePolicies() {
		util.RespondWithError(c, http.StatusForbidden, "Viewers cannot manage policies", cr_errors.ErrForbiddenRole)
		return true
	}
	return false
}

// CreatePolicy endpoint
func (pc *PolicyController) CreatePolicy(c *gin.Context) {
	if viewerForbidden(c) {
		return
	}

	var policy model.Policy
	if err := c.ShouldBindJSON(&policy); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid policy data", cr_errors.ErrInvalidPolicyData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", cr_errors.ErrUnauthorized)
		return
	}

	createdPolicy, err := pc.policyService.CreatePolicy(c, policy, userID)
	if err != nil {
		switch {
		case errors.Is(err, cr_errors.ErrInvalidTriggerValue):
			util.RespondWithError(c, http.StatusBadRequest, "Trigger value must be a finite number", err)
		case errors.Is(err, cr_errors.ErrMissingCustomWindow):
			util.RespondWithError(c, http.StatusBadRequest, "Custom time window requires a value and a unit", err)
		case errors.Is(err, cr_errors.ErrNoActions):
			util.RespondWithError(c, http.StatusBadRequest, "Policy must have at least one action", err)
		case errors.Is(err, cr_errors.ErrInvalidPolicyData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid policy data", err)
		case errors.Is(err, cr_errors.ErrPolicyConflict):
			util.RespondWithError(c, http.StatusConflict, "Policy already exists", err)
		case errors.Is(err, cr_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create policy", cr_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdPolicy)
}

// BulkCreatePolicies endpoint
func (pc *PolicyController) BulkCreatePolicies(c *gin.Context) {
	if viewerForbidden(c) {
		return
	}

	var policies []model.Policy
	if err := c.ShouldBindJSON(&policies); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid policy data", cr_errors.ErrInvalidPolicyData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", cr_errors.ErrUnauthorized)
		return
	}

	policyIDs, err := pc.policyService.BulkCreatePolicies(c, policies, userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to create policies", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ids": policyIDs})
}

// GetPolicy endpoint
func (pc *PolicyController) GetPolicy(c *gin.Context) {
	policyID := c.Param("id")

	policy, err := pc.policyService.GetPolicy(c, policyID)
	if err != nil {
		if errors.Is(err, cr_errors.ErrPolicyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Policy not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve policy", err)
		}
		return
	}

	c.JSON(http.StatusOK, policy)
}

// ListPolicies endpoint
func (pc *PolicyController) ListPolicies(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", cr_errors.ErrInvalidPagination)
		return
	}

	policies, err := pc.policyService.ListPolicies(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list policies", err)
		return
	}

	c.JSON(http.StatusOK, policies)
}

// SearchPolicies endpoint
func (pc *PolicyController) SearchPolicies(c *gin.Context) {
	var criteria model.PolicySearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid search criteria", err)
		return
	}

	policies, err := pc.policyService.SearchPolicies(c, criteria)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to search policies", err)
		return
	}

	c.JSON(http.StatusOK, policies)
}

// SetPolicyActive endpoint
func (pc *PolicyController) SetPolicyActive(c *gin.Context) {
	if viewerForbidden(c) {
		return
	}

	policyID := c.Param("id")
	var activation model.PolicyActivation
	if err := c.ShouldBindJSON(&activation); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid activation data", err)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	policy, err := pc.policyService.SetPolicyActive(c, policyID, activation.Active, activation.ExpectedVersion, userID)
	if err != nil {
		switch {
		case errors.Is(err, cr_errors.ErrPolicyNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Policy not found", err)
		case errors.Is(err, cr_errors.ErrPolicyConflict):
			util.RespondWithError(c, http.StatusConflict, "Policy was modified concurrently", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to toggle policy", err)
		}
		return
	}

	c.JSON(http.StatusOK, policy)
}

// DeletePolicy endpoint
func (pc *PolicyController) DeletePolicy(c *gin.Context) {
	if viewerForbidden(c) {
		return
	}

	policyID := c.Param("id")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := pc.policyService.DeletePolicy(c, policyID, userID); err != nil {
		if errors.Is(err, cr_errors.ErrPolicyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Policy not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete policy", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
