// model/agent.go
package model

import "time"

// AgentStatus is the last reported runtime state of a deployed agent.
type AgentStatus string

const (
	AgentRunning AgentStatus = "running"
	AgentPaused  AgentStatus = "paused"
	AgentError   AgentStatus = "error"
	AgentStopped AgentStatus = "stopped"
)

// Valid reports whether s is a known agent status.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentRunning, AgentPaused, AgentError, AgentStopped:
		return true
	}
	return false
}

type Agent struct {
	ID          string      `json:"id"`
	WorkspaceID string      `json:"workspace_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Status      AgentStatus `json:"status"`
	LastSeen    *time.Time  `json:"last_seen,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
