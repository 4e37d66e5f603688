// controller/policy_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/controlroom-hq/control-room/api/controller"
	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	logger "github.com/controlroom-hq/control-room/api/logging"
	"github.com/controlroom-hq/control-room/api/model"
	mock_service "github.com/controlroom-hq/control-room/api/test/service_mock"
)

func setupRouter(role string) *gin.Engine {
	r := gin.Default()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
		c.Set("userRole", role)
		c.Next()
	})
	return r
}

func TestPolicyController(t *testing.T) {
	// Initialize logger
	logger.InitLogger("../logging")
	defer logger.Sync()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPolicyService := mock_service.NewMockIPolicyService(ctrl)
	policyController := controller.NewPolicyController(mockPolicyService)
	router := setupRouter("editor")
	api := router.Group("/")
	policyController.RegisterRoutes(api)

	t.Run("CreatePolicy_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			CreatePolicy(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&model.Policy{ID: "1", Name: "Pause on spend"}, nil)

		body := strings.NewReader(`{"name":"Pause on spend"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/policies", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("CreatePolicy_Failure_MissingActions", func(t *testing.T) {
		mockPolicyService.EXPECT().
			CreatePolicy(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, cr_errors.ErrNoActions)

		body := strings.NewReader(`{"name":"No actions"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/policies", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("CreatePolicy_Failure_Conflict", func(t *testing.T) {
		mockPolicyService.EXPECT().
			CreatePolicy(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, cr_errors.ErrPolicyConflict)

		body := strings.NewReader(`{"name":"Pause on spend"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/policies", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("SetPolicyActive_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			SetPolicyActive(gomock.Any(), "1", true, gomock.Any(), gomock.Any()).
			Return(&model.Policy{ID: "1", Active: true, Version: 2}, nil)

		body := strings.NewReader(`{"active":true}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/policies/1/active", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var got model.Policy
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.True(t, got.Active)
		assert.Equal(t, 2, got.Version)
	})

	t.Run("SetPolicyActive_Failure_VersionConflict", func(t *testing.T) {
		mockPolicyService.EXPECT().
			SetPolicyActive(gomock.Any(), "1", true, gomock.Any(), gomock.Any()).
			Return(nil, cr_errors.ErrPolicyConflict)

		body := strings.NewReader(`{"active":true,"expected_version":1}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/policies/1/active", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("SetPolicyActive_Failure_NotFound", func(t *testing.T) {
		mockPolicyService.EXPECT().
			SetPolicyActive(gomock.Any(), "missing", false, gomock.Any(), gomock.Any()).
			Return(nil, cr_errors.ErrPolicyNotFound)

		body := strings.NewReader(`{"active":false}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/policies/missing/active", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DeletePolicy_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			DeletePolicy(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/policies/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("DeletePolicy_Failure_NotFound", func(t *testing.T) {
		mockPolicyService.EXPECT().
			DeletePolicy(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(cr_errors.ErrPolicyNotFound)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/policies/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GetPolicy_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			GetPolicy(gomock.Any(), gomock.Any()).
			Return(&model.Policy{ID: "1", Name: "Pause on spend"}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/policies/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetPolicy_Failure_NotFound", func(t *testing.T) {
		mockPolicyService.EXPECT().
			GetPolicy(gomock.Any(), gomock.Any()).
			Return(nil, cr_errors.ErrPolicyNotFound)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/policies/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ListPolicies_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			ListPolicies(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]*model.Policy{{ID: "1"}, {ID: "2"}}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/policies", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ListPolicies_Failure_InvalidPagination", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/policies?limit=abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("SearchPolicies_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			SearchPolicies(gomock.Any(), gomock.Any()).
			Return([]*model.Policy{{ID: "1"}}, nil)

		body := strings.NewReader(`{"trigger_type":"cost"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/policies/search", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("BulkCreatePolicies_Success", func(t *testing.T) {
		mockPolicyService.EXPECT().
			BulkCreatePolicies(gomock.Any(), gomock.Any(), gomock.Any()).
			Return([]string{"1", "2"}, nil)

		body := strings.NewReader(`[{"name":"a"},{"name":"b"}]`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/policies/bulk", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestPolicyController_ViewerForbidden(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPolicyService := mock_service.NewMockIPolicyService(ctrl)
	policyController := controller.NewPolicyController(mockPolicyService)
	router := setupRouter("viewer")
	api := router.Group("/")
	policyController.RegisterRoutes(api)

	t.Run("CreatePolicy_Forbidden", func(t *testing.T) {
		body := strings.NewReader(`{"name":"Pause on spend"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/policies", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("SetPolicyActive_Forbidden", func(t *testing.T) {
		body := strings.NewReader(`{"active":true}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PATCH", "/policies/1/active", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("DeletePolicy_Forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/policies/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("GetPolicy_AllowedForViewer", func(t *testing.T) {
		mockPolicyService.EXPECT().
			GetPolicy(gomock.Any(), gomock.Any()).
			Return(&model.Policy{ID: "1"}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/policies/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
