// service/services.go
package service

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/controlroom-hq/control-room/api/audit"
	"github.com/controlroom-hq/control-room/api/dao"
	"github.com/controlroom-hq/control-room/api/util"
)

type Services struct {
	Policy    IPolicyService
	Workspace IWorkspaceService
	Agent     IAgentService
	Billing   IBillingService
}

func InitializeServices(
	pool *pgxpool.Pool,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	policyDAO := dao.NewPolicyDAO(pool, auditService)
	workspaceDAO := dao.NewWorkspaceDAO(pool, auditService)
	agentDAO := dao.NewAgentDAO(pool, auditService)
	billingDAO := dao.NewBillingDAO(pool, auditService)

	services := &Services{
		Policy:    NewPolicyService(policyDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Workspace: NewWorkspaceService(workspaceDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Agent:     NewAgentService(agentDAO, validationUtil, cacheService, notificationSvc, eventBus),
		Billing:   NewBillingService(billingDAO, NewRedisEventDedup(), notificationSvc, eventBus),
	}

	return services, nil
}
