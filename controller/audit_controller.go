// controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/controlroom-hq/control-room/api/audit"
	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	"github.com/controlroom-hq/control-room/api/util"
	helper_util "github.com/controlroom-hq/control-room/api/util/helper"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", ac.QueryLogs)
}

// QueryLogs returns audit entries in a time range, newest window by default.
// from and to are RFC3339; to defaults to now.
func (ac *AuditController) QueryLogs(c *gin.Context) {
	var from time.Time
	if s := c.Query("from"); s != "" {
		parsed, err := helper_util.ParseTime(s)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", cr_errors.ErrInvalidSearchCriteria)
			return
		}
		from = parsed
	}

	to := time.Now()
	var rawTo interface{}
	if s := c.Query("to"); s != "" {
		rawTo = s
	}
	parsedTo, err := helper_util.ParseNullableTime(rawTo)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", cr_errors.ErrInvalidSearchCriteria)
		return
	}
	if parsedTo != nil {
		to = *parsedTo
	}

	logs, err := ac.auditService.QueryLogs(c, from, to, c.Query("userId"), c.Query("resourceId"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit logs", err)
		return
	}

	c.JSON(http.StatusOK, logs)
}
