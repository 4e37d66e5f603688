// errors/agent_errors.go
package errors

import "errors"

var (
	ErrAgentNotFound     = errors.New("agent not found")
	ErrInvalidAgentData  = errors.New("invalid agent data")
	ErrInvalidAgentState = errors.New("invalid agent status")
)
