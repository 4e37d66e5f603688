// controller/webhook_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/controlroom-hq/control-room/api/config"
	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	logger "github.com/controlroom-hq/control-room/api/logging"
	"github.com/controlroom-hq/control-room/api/model"
	"github.com/controlroom-hq/control-room/api/service"
	"github.com/controlroom-hq/control-room/api/util"
)

// SignatureHeader carries the provider's hex HMAC-SHA256 of the raw body.
const SignatureHeader = "X-Billing-Signature"

type WebhookController struct {
	billingService service.IBillingService
	secret         string
	limiter        *rate.Limiter
}

func NewWebhookController(billingService service.IBillingService) *WebhookController {
	return &WebhookController{
		billingService: billingService,
		secret:         config.GetString("billing.webhookSecret"),
		limiter: rate.NewLimiter(
			rate.Limit(config.GetFloat64("billing.webhookRatePerSec")),
			config.GetInt("billing.webhookBurst"),
		),
	}
}

// RegisterRoutes registers the webhook route. It lives outside the
// authenticated API group; the signature check is its authentication.
func (whc *WebhookController) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/billing", whc.HandleBillingWebhook)
}

// HandleBillingWebhook verifies, dedups and dispatches a provider delivery.
// Redeliveries of an already-processed event are acknowledged with 200 so the
// provider stops retrying.
func (whc *WebhookController) HandleBillingWebhook(c *gin.Context) {
	if !whc.limiter.Allow() {
		util.RespondWithError(c, http.StatusTooManyRequests, "Too many webhook deliveries", nil)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	if !util.VerifySignature(whc.secret, body, c.GetHeader(SignatureHeader)) {
		logger.Warn("Rejected billing webhook with bad signature")
		util.RespondWithError(c, http.StatusUnauthorized, "Invalid signature", cr_errors.ErrInvalidSignature)
		return
	}

	var event model.BillingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid event payload", cr_errors.ErrInvalidEventPayload)
		return
	}

	if err := whc.billingService.HandleEvent(c, event); err != nil {
		switch {
		case errors.Is(err, cr_errors.ErrDuplicateEvent):
			c.JSON(http.StatusOK, gin.H{"status": "already processed"})
		case errors.Is(err, cr_errors.ErrInvalidEventPayload):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid event payload", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to process event", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}
