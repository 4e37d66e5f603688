// controller/onboarding_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	"github.com/controlroom-hq/control-room/api/onboarding"
	"github.com/controlroom-hq/control-room/api/util"
)

type OnboardingController struct {
	seenStore onboarding.SeenStore
}

func NewOnboardingController(seenStore onboarding.SeenStore) *OnboardingController {
	return &OnboardingController{
		seenStore: seenStore,
	}
}

// RegisterRoutes registers the API routes
func (oc *OnboardingController) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/onboarding")
	{
		group.GET("", oc.GetOnboarding)
		group.POST("/seen", oc.MarkSeen)
	}
}

// GetOnboarding returns the slide deck plus whether this user has already
// completed onboarding, so the client can decide to skip straight to the hub.
func (oc *OnboardingController) GetOnboarding(c *gin.Context) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", cr_errors.ErrUnauthorized)
		return
	}

	seen, err := oc.seenStore.Seen(c, userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to load onboarding state", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slides":       onboarding.DefaultSlides,
		"seen":         seen,
		"navRevealMs":  onboarding.NavRevealDelay.Milliseconds(),
		"demoEnableMs": onboarding.DemoEnableDelay.Milliseconds(),
	})
}

// MarkSeen records an exit from the onboarding flow and returns the route the
// client should navigate to.
func (oc *OnboardingController) MarkSeen(c *gin.Context) {
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", cr_errors.ErrUnauthorized)
		return
	}

	var body struct {
		Action onboarding.ExitAction `json:"action"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		body.Action = onboarding.ExitSkip
	}

	seq := onboarding.NewSequencer(nil)
	redirect, err := seq.Exit(c, oc.seenStore, userID, body.Action)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to record onboarding exit", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect": redirect})
}
