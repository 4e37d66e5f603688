// util/validation_util_test.go
package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	"github.com/controlroom-hq/control-room/api/model"
)

func float64Ptr(f float64) *float64 {
	return &f
}

func validPolicy() *model.Policy {
	return &model.Policy{
		Name: "Pause on error spike",
		Trigger: model.Trigger{
			Type:       model.TriggerErrorCount,
			Value:      float64Ptr(5),
			TimeWindow: "5m",
		},
		Actions: []model.Action{{Type: model.ActionPauseAgent}},
	}
}

func TestValidatePolicy(t *testing.T) {
	v := NewValidationUtil()

	t.Run("ValidPolicy", func(t *testing.T) {
		policy := validPolicy()
		assert.NoError(t, v.ValidatePolicy(policy))
	})

	t.Run("EmptyName", func(t *testing.T) {
		policy := validPolicy()
		policy.Name = ""
		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrInvalidPolicyData)
	})

	t.Run("UnknownTriggerType", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.Type = "temperature"
		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrInvalidPolicyData)
	})

	t.Run("NilTriggerValue", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.Value = nil
		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrInvalidTriggerValue)
	})

	t.Run("NaNTriggerValue", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.Value = float64Ptr(math.NaN())
		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrInvalidTriggerValue)
	})

	t.Run("CustomWindowNormalized", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.TimeWindow = model.TimeWindowCustom
		policy.Trigger.CustomValue = "30"
		policy.Trigger.CustomUnit = "minutes"

		assert.NoError(t, v.ValidatePolicy(policy))
		assert.Equal(t, "30m", policy.Trigger.TimeWindow)
		assert.Empty(t, policy.Trigger.CustomValue)
		assert.Empty(t, policy.Trigger.CustomUnit)
	})

	t.Run("CustomWindowFractional", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.TimeWindow = model.TimeWindowCustom
		policy.Trigger.CustomValue = "1.5"
		policy.Trigger.CustomUnit = "hours"

		assert.NoError(t, v.ValidatePolicy(policy))
		assert.Equal(t, "1.5h", policy.Trigger.TimeWindow)
	})

	t.Run("CustomWindowMissingUnit", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.TimeWindow = model.TimeWindowCustom
		policy.Trigger.CustomValue = "30"

		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrMissingCustomWindow)
	})

	t.Run("CustomWindowNegativeValue", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.TimeWindow = model.TimeWindowCustom
		policy.Trigger.CustomValue = "-10"
		policy.Trigger.CustomUnit = "minutes"

		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrMissingCustomWindow)
	})

	t.Run("CustomWindowUnknownUnit", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.TimeWindow = model.TimeWindowCustom
		policy.Trigger.CustomValue = "2"
		policy.Trigger.CustomUnit = "fortnights"

		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrMissingCustomWindow)
	})

	t.Run("IndefiniteWindowAllowed", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.TimeWindow = model.TimeWindowIndefinite
		assert.NoError(t, v.ValidatePolicy(policy))
	})

	t.Run("UnknownFixedWindow", func(t *testing.T) {
		policy := validPolicy()
		policy.Trigger.TimeWindow = "45m"
		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrInvalidPolicyData)
	})

	t.Run("NoActions", func(t *testing.T) {
		policy := validPolicy()
		policy.Actions = nil
		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrNoActions)
	})

	t.Run("UnknownActionType", func(t *testing.T) {
		policy := validPolicy()
		policy.Actions = []model.Action{{Type: "self_destruct"}}
		assert.ErrorIs(t, v.ValidatePolicy(policy), cr_errors.ErrInvalidPolicyData)
	})

	t.Run("DefaultPriority", func(t *testing.T) {
		policy := validPolicy()
		assert.NoError(t, v.ValidatePolicy(policy))
		assert.Equal(t, model.PriorityMedium, policy.Priority)
	})

	t.Run("NilTargetsBecomeEmptySlice", func(t *testing.T) {
		policy := validPolicy()
		policy.TargetAgents = nil
		assert.NoError(t, v.ValidatePolicy(policy))
		assert.NotNil(t, policy.TargetAgents)
		assert.Empty(t, policy.TargetAgents)
	})
}

func TestValidateMember(t *testing.T) {
	v := NewValidationUtil()

	t.Run("ValidMember", func(t *testing.T) {
		member := model.WorkspaceMember{UserID: "u1", Email: "u1@example.com", Role: model.RoleEditor}
		assert.NoError(t, v.ValidateMember(member))
	})

	t.Run("InvalidRole", func(t *testing.T) {
		member := model.WorkspaceMember{UserID: "u1", Email: "u1@example.com", Role: "superuser"}
		assert.ErrorIs(t, v.ValidateMember(member), cr_errors.ErrInvalidRole)
	})
}

func TestValidateAgent(t *testing.T) {
	v := NewValidationUtil()

	t.Run("ValidAgent", func(t *testing.T) {
		agent := model.Agent{Name: "billing-bot", WorkspaceID: "w1", Status: model.AgentRunning}
		assert.NoError(t, v.ValidateAgent(agent))
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		agent := model.Agent{Name: "billing-bot", WorkspaceID: "w1", Status: "sleeping"}
		assert.ErrorIs(t, v.ValidateAgent(agent), cr_errors.ErrInvalidAgentState)
	})
}
