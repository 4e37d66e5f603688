// model/policy.go
package model

import (
	"time"
)

// TriggerType identifies the agent metric a policy watches.
type TriggerType string

const (
	TriggerErrorCount TriggerType = "error_count"
	TriggerUptime     TriggerType = "uptime"
	TriggerCost       TriggerType = "cost"
	TriggerLatency    TriggerType = "latency"
	TriggerMemory     TriggerType = "memory"
)

// ActionType identifies what happens when a policy fires.
type ActionType string

const (
	ActionPauseAgent   ActionType = "pause_agent"
	ActionSendAlert    ActionType = "send_alert"
	ActionRestartAgent ActionType = "restart_agent"
	ActionScaleDown    ActionType = "scale_down"
)

// Priority is a relative tie-break label between policies.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// TimeWindowIndefinite means the trigger is evaluated without a lookback window.
const TimeWindowIndefinite = "indefinite"

// TimeWindowCustom marks a caller-supplied window; CustomValue and CustomUnit
// must both be set on the trigger.
const TimeWindowCustom = "custom"

// FixedTimeWindows are the selectable lookback windows, already in the
// canonical compact form custom windows are normalized into.
var FixedTimeWindows = []string{"1m", "5m", "15m", "30m", "1h", "6h", "24h"}

// CustomUnits maps accepted custom window units to their compact code.
var CustomUnits = map[string]string{
	"seconds": "s",
	"minutes": "m",
	"hours":   "h",
	"days":    "d",
}

type Trigger struct {
	Type        TriggerType `json:"type"`
	Value       *float64    `json:"value"`
	TimeWindow  string      `json:"time_window"`
	CustomValue string      `json:"custom_value,omitempty"`
	CustomUnit  string      `json:"custom_unit,omitempty"`
}

type Action struct {
	Type ActionType `json:"type"`
}

type Policy struct {
	ID          string   `json:"id"`
	WorkspaceID string   `json:"workspace_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Active      bool     `json:"active"`
	Trigger     Trigger  `json:"trigger"`
	Actions     []Action `json:"actions"`
	// TargetAgents empty means the policy applies to every agent in the
	// workspace. Stored as an empty slice, never null.
	TargetAgents  []string   `json:"target_agents"`
	Priority      Priority   `json:"priority"`
	Version       int        `json:"version"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type PolicySearchCriteria struct {
	Name        string      `json:"name,omitempty"`
	WorkspaceID string      `json:"workspace_id,omitempty"`
	TriggerType TriggerType `json:"trigger_type,omitempty"`
	Priority    Priority    `json:"priority,omitempty"`
	Active      *bool       `json:"active,omitempty"`
	TargetAgent string      `json:"target_agent,omitempty"`
	Limit       int         `json:"limit,omitempty"`
	Offset      int         `json:"offset,omitempty"`
}

// PolicyActivation is the body of the activation toggle endpoint.
// ExpectedVersion is optional; when present the toggle fails with a conflict
// if the stored version differs.
type PolicyActivation struct {
	Active          bool `json:"active"`
	ExpectedVersion *int `json:"expected_version,omitempty"`
}
