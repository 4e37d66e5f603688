// controller/controllers.go
package controller

import (
	"github.com/controlroom-hq/control-room/api/audit"
	"github.com/controlroom-hq/control-room/api/onboarding"
	"github.com/controlroom-hq/control-room/api/service"
)

type Controllers struct {
	Policy     *PolicyController
	Workspace  *WorkspaceController
	Agent      *AgentController
	Onboarding *OnboardingController
	Webhook    *WebhookController
	Audit      *AuditController
}

func InitializeControllers(services *service.Services, seenStore onboarding.SeenStore, auditService audit.Service) *Controllers {
	return &Controllers{
		Policy:     NewPolicyController(services.Policy),
		Workspace:  NewWorkspaceController(services.Workspace),
		Agent:      NewAgentController(services.Agent),
		Onboarding: NewOnboardingController(seenStore),
		Webhook:    NewWebhookController(services.Billing),
		Audit:      NewAuditController(auditService),
	}
}
