// util/notification_service.go

package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	logger "github.com/controlroom-hq/control-room/api/logging"
	"github.com/controlroom-hq/control-room/api/model"
)

// NotificationService publishes change events over NATS for the agent fleet
// and the external policy evaluation engine. A missing connection degrades to
// logging only; API calls never fail because a notification could not be sent.
type NotificationService struct {
	nc *nats.Conn
}

// PolicyChangeEvent is the wire shape published on policy subjects.
type PolicyChangeEvent struct {
	ChangeType   string   `json:"change_type"` // "created", "toggled", "deleted"
	PolicyID     string   `json:"policy_id"`
	WorkspaceID  string   `json:"workspace_id,omitempty"`
	Active       bool     `json:"active"`
	TargetAgents []string `json:"target_agents,omitempty"`
	Timestamp    string   `json:"ts"`
}

func NewNotificationService(natsURL string) *NotificationService {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		logger.Warn("Failed to connect to NATS, notifications degraded to logs",
			zap.Error(err), zap.String("url", natsURL))
	}
	return &NotificationService{nc: nc}
}

func (n *NotificationService) Close() {
	if n.nc != nil {
		n.nc.Close()
	}
}

// NotifyPolicyChange publishes a policy lifecycle event on
// controlroom.policy.<changeType>.
func (n *NotificationService) NotifyPolicyChange(ctx context.Context, changeType string, policy model.Policy) error {
	switch changeType {
	case "created", "toggled", "deleted":
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	event := PolicyChangeEvent{
		ChangeType:   changeType,
		PolicyID:     policy.ID,
		WorkspaceID:  policy.WorkspaceID,
		Active:       policy.Active,
		TargetAgents: policy.TargetAgents,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	logger.Info("NOTIFICATION: policy change",
		zap.String("changeType", changeType),
		zap.String("policyID", policy.ID),
		zap.String("policyName", policy.Name))

	return n.publish("controlroom.policy."+changeType, event)
}

// NotifyWorkspaceChange publishes a workspace lifecycle event.
func (n *NotificationService) NotifyWorkspaceChange(ctx context.Context, changeType string, workspace model.Workspace) error {
	logger.Info("NOTIFICATION: workspace change",
		zap.String("changeType", changeType),
		zap.String("workspaceID", workspace.ID),
		zap.String("workspaceName", workspace.Name))

	return n.publish("controlroom.workspace."+changeType, workspace)
}

// NotifyAgentChange publishes an agent registry event.
func (n *NotificationService) NotifyAgentChange(ctx context.Context, changeType string, agent model.Agent) error {
	logger.Info("NOTIFICATION: agent change",
		zap.String("changeType", changeType),
		zap.String("agentID", agent.ID),
		zap.String("status", string(agent.Status)))

	return n.publish("controlroom.agent."+changeType, agent)
}

// NotifySubscriptionChange publishes a billing subscription event.
func (n *NotificationService) NotifySubscriptionChange(ctx context.Context, changeType string, sub model.Subscription) error {
	logger.Info("NOTIFICATION: subscription change",
		zap.String("changeType", changeType),
		zap.String("subscriptionID", sub.ID),
		zap.String("workspaceID", sub.WorkspaceID))

	return n.publish("controlroom.billing.subscription."+changeType, sub)
}

// PolicyFiredEvent is the wire shape the evaluation engine publishes on
// controlroom.policy.fired when a policy's trigger condition is met.
type PolicyFiredEvent struct {
	PolicyID string    `json:"policy_id"`
	AgentID  string    `json:"agent_id,omitempty"`
	FiredAt  time.Time `json:"fired_at"`
}

// SubscribePolicyFired subscribes to firing reports from the evaluation
// engine. Without a NATS connection the subscription is skipped; firings are
// advisory and the API works without them.
func (n *NotificationService) SubscribePolicyFired(handler func(event PolicyFiredEvent)) error {
	if n.nc == nil {
		logger.Warn("NATS not connected, policy firing reports disabled")
		return nil
	}
	_, err := n.nc.Subscribe("controlroom.policy.fired", func(msg *nats.Msg) {
		var event PolicyFiredEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("Dropping malformed policy firing report", zap.Error(err))
			return
		}
		if event.FiredAt.IsZero() {
			event.FiredAt = time.Now().UTC()
		}
		handler(event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to policy firings: %w", err)
	}
	return nil
}

func (n *NotificationService) publish(subject string, payload interface{}) error {
	if n.nc == nil || !n.nc.IsConnected() {
		logger.Debug("NATS not connected, notification dropped", zap.String("subject", subject))
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := n.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
