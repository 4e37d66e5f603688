// errors/workspace_errors.go
package errors

import "errors"

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrMemberNotFound    = errors.New("workspace member not found")
	ErrMemberConflict    = errors.New("user is already a member of the workspace")
	ErrInvalidRole       = errors.New("invalid workspace role")
	ErrInvalidWorkspace  = errors.New("invalid workspace data")
)
