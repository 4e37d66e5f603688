// controller/webhook_controller_test.go
package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/controlroom-hq/control-room/api/config"
	"github.com/controlroom-hq/control-room/api/controller"
	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	logger "github.com/controlroom-hq/control-room/api/logging"
	mock_service "github.com/controlroom-hq/control-room/api/test/service_mock"
	"github.com/controlroom-hq/control-room/api/util"
)

const webhookSecret = "test-secret"

func setupWebhookRouter(t *testing.T, ctrl *gomock.Controller) (*gin.Engine, *mock_service.MockIBillingService) {
	t.Helper()

	assert.NoError(t, config.InitConfig())
	config.Set("billing.webhookSecret", webhookSecret)

	mockBillingService := mock_service.NewMockIBillingService(ctrl)
	webhookController := controller.NewWebhookController(mockBillingService)

	router := gin.Default()
	root := router.Group("/")
	webhookController.RegisterRoutes(root)
	return router, mockBillingService
}

func postWebhook(router *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/webhooks/billing", strings.NewReader(body))
	req.Header.Set(controller.SignatureHeader, signature)
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookController(t *testing.T) {
	logger.InitLogger("../logging")
	defer logger.Sync()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router, mockBillingService := setupWebhookRouter(t, ctrl)

	body := `{"id":"evt_1","type":"subscription.created","data":{"subscription_id":"sub_1","plan":"pro","status":"active"}}`

	t.Run("ValidDelivery_Processed", func(t *testing.T) {
		mockBillingService.EXPECT().
			HandleEvent(gomock.Any(), gomock.Any()).
			Return(nil)

		w := postWebhook(router, body, util.SignPayload(webhookSecret, []byte(body)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "processed")
	})

	t.Run("DuplicateDelivery_AcknowledgedWith200", func(t *testing.T) {
		mockBillingService.EXPECT().
			HandleEvent(gomock.Any(), gomock.Any()).
			Return(cr_errors.ErrDuplicateEvent)

		w := postWebhook(router, body, util.SignPayload(webhookSecret, []byte(body)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "already processed")
	})

	t.Run("BadSignature_Rejected", func(t *testing.T) {
		w := postWebhook(router, body, "deadbeef")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MalformedBody_Rejected", func(t *testing.T) {
		bad := `{"id":`
		w := postWebhook(router, bad, util.SignPayload(webhookSecret, []byte(bad)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidPayload_Rejected", func(t *testing.T) {
		mockBillingService.EXPECT().
			HandleEvent(gomock.Any(), gomock.Any()).
			Return(cr_errors.ErrInvalidEventPayload)

		empty := `{"type":"subscription.created","data":{}}`
		w := postWebhook(router, empty, util.SignPayload(webhookSecret, []byte(empty)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
