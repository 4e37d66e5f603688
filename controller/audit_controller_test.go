// controller/audit_controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/controlroom-hq/control-room/api/audit"
	"github.com/controlroom-hq/control-room/api/controller"
	logger "github.com/controlroom-hq/control-room/api/logging"
	audit_mock "github.com/controlroom-hq/control-room/api/test/mock"
)

func TestAuditController(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()

	mockAuditService := new(audit_mock.MockAuditService)
	auditController := controller.NewAuditController(mockAuditService)

	router := gin.Default()
	api := router.Group("/")
	auditController.RegisterRoutes(api)

	t.Run("QueryLogs_Success", func(t *testing.T) {
		mockAuditService.On("QueryLogs", mock.Anything, mock.Anything, mock.Anything, "user-1", "").
			Return([]audit.AuditLog{{UserID: "user-1", Action: audit.ActionCreatePolicy}}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs?from=2026-08-01T00:00:00Z&to=2026-08-31T00:00:00Z&userId=user-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockAuditService.AssertExpectations(t)
	})

	t.Run("QueryLogs_DefaultsToNow", func(t *testing.T) {
		mockAuditService.On("QueryLogs", mock.Anything, mock.Anything, mock.MatchedBy(func(to time.Time) bool {
			return time.Since(to) < time.Minute
		}), "", "").Return([]audit.AuditLog{}, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockAuditService.AssertExpectations(t)
	})

	t.Run("QueryLogs_BadFromTimestamp", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs?from=yesterday", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("QueryLogs_BadToTimestamp", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/audit-logs?to=tomorrow", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
