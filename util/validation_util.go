// util/validation_util.go

package util

import (
	"fmt"
	"math"
	"strconv"

	cr_errors "github.com/controlroom-hq/control-room/api/errors"
	"github.com/controlroom-hq/control-room/api/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

// ValidatePolicy checks a policy draft and normalizes it in place. Checks run
// in order: name, trigger value, time window, actions. A custom time window is
// collapsed into the compact value+unit-code form used by the fixed windows
// (e.g. "30m"), and a nil target list becomes an empty one so empty-means-all
// survives storage.
func (v *ValidationUtil) ValidatePolicy(policy *model.Policy) error {
	if policy.Name == "" {
		return fmt.Errorf("%w: policy name cannot be empty", cr_errors.ErrInvalidPolicyData)
	}

	switch policy.Trigger.Type {
	case model.TriggerErrorCount, model.TriggerUptime, model.TriggerCost,
		model.TriggerLatency, model.TriggerMemory:
	default:
		return fmt.Errorf("%w: unknown trigger type %q", cr_errors.ErrInvalidPolicyData, policy.Trigger.Type)
	}

	if policy.Trigger.Value == nil {
		return cr_errors.ErrInvalidTriggerValue
	}
	if math.IsNaN(*policy.Trigger.Value) || math.IsInf(*policy.Trigger.Value, 0) {
		return cr_errors.ErrInvalidTriggerValue
	}

	if policy.Trigger.TimeWindow == model.TimeWindowCustom {
		normalized, err := normalizeCustomWindow(policy.Trigger.CustomValue, policy.Trigger.CustomUnit)
		if err != nil {
			return err
		}
		policy.Trigger.TimeWindow = normalized
		policy.Trigger.CustomValue = ""
		policy.Trigger.CustomUnit = ""
	} else if !validFixedWindow(policy.Trigger.TimeWindow) {
		return fmt.Errorf("%w: unknown time window %q", cr_errors.ErrInvalidPolicyData, policy.Trigger.TimeWindow)
	}

	if len(policy.Actions) == 0 {
		return cr_errors.ErrNoActions
	}
	for _, action := range policy.Actions {
		switch action.Type {
		case model.ActionPauseAgent, model.ActionSendAlert,
			model.ActionRestartAgent, model.ActionScaleDown:
		default:
			return fmt.Errorf("%w: unknown action type %q", cr_errors.ErrInvalidPolicyData, action.Type)
		}
	}

	if policy.Priority == "" {
		policy.Priority = model.PriorityMedium
	}
	switch policy.Priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityCritical:
	default:
		return fmt.Errorf("%w: unknown priority %q", cr_errors.ErrInvalidPolicyData, policy.Priority)
	}

	if policy.TargetAgents == nil {
		policy.TargetAgents = []string{}
	}

	return nil
}

func normalizeCustomWindow(value, unit string) (string, error) {
	if value == "" || unit == "" {
		return "", cr_errors.ErrMissingCustomWindow
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || n <= 0 || math.IsInf(n, 0) {
		return "", cr_errors.ErrMissingCustomWindow
	}
	code, ok := model.CustomUnits[unit]
	if !ok {
		return "", cr_errors.ErrMissingCustomWindow
	}
	// Whole values render without a fraction: "30" + "m" -> "30m".
	if n == math.Trunc(n) {
		return strconv.FormatInt(int64(n), 10) + code, nil
	}
	return strconv.FormatFloat(n, 'f', -1, 64) + code, nil
}

func validFixedWindow(window string) bool {
	if window == model.TimeWindowIndefinite {
		return true
	}
	for _, w := range model.FixedTimeWindows {
		if w == window {
			return true
		}
	}
	return false
}

func (v *ValidationUtil) ValidateWorkspace(workspace model.Workspace) error {
	if workspace.Name == "" {
		return fmt.Errorf("%w: workspace name cannot be empty", cr_errors.ErrInvalidWorkspace)
	}
	return nil
}

func (v *ValidationUtil) ValidateMember(member model.WorkspaceMember) error {
	if member.UserID == "" {
		return fmt.Errorf("%w: member user ID cannot be empty", cr_errors.ErrInvalidWorkspace)
	}
	if member.Email == "" {
		return fmt.Errorf("%w: member email cannot be empty", cr_errors.ErrInvalidWorkspace)
	}
	if !member.Role.Valid() {
		return cr_errors.ErrInvalidRole
	}
	return nil
}

func (v *ValidationUtil) ValidateAgent(agent model.Agent) error {
	if agent.Name == "" {
		return fmt.Errorf("%w: agent name cannot be empty", cr_errors.ErrInvalidAgentData)
	}
	if agent.WorkspaceID == "" {
		return fmt.Errorf("%w: agent workspace ID cannot be empty", cr_errors.ErrInvalidAgentData)
	}
	if agent.Status != "" && !agent.Status.Valid() {
		return cr_errors.ErrInvalidAgentState
	}
	return nil
}
