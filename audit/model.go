// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// Actions recorded in the audit trail.
const (
	ActionCreatePolicy    = "CREATE_POLICY"
	ActionSetPolicyActive = "SET_POLICY_ACTIVE"
	ActionDeletePolicy    = "DELETE_POLICY"
	ActionCreateWorkspace = "CREATE_WORKSPACE"
	ActionDeleteWorkspace = "DELETE_WORKSPACE"
	ActionAddMember       = "ADD_MEMBER"
	ActionUpdateMember    = "UPDATE_MEMBER"
	ActionRemoveMember    = "REMOVE_MEMBER"
	ActionRegisterAgent   = "REGISTER_AGENT"
	ActionAgentStatus     = "UPDATE_AGENT_STATUS"
	ActionBillingEvent    = "BILLING_EVENT"
)

type AuditLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	UserID        string          `json:"user_id"`
	WorkspaceID   string          `json:"workspace_id,omitempty"`
	Action        string          `json:"action"`
	ResourceID    string          `json:"resource_id"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}
