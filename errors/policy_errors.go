// errors/policy_errors.go
package errors

import "errors"

var (
	ErrPolicyNotFound        = errors.New("policy not found")
	ErrDatabaseOperation     = errors.New("database operation failed")
	ErrInvalidPolicyData     = errors.New("invalid policy data")
	ErrInvalidTriggerValue   = errors.New("trigger value must be a finite number")
	ErrMissingCustomWindow   = errors.New("custom time window requires a positive value and a unit")
	ErrNoActions             = errors.New("policy must have at least one action")
	ErrPolicyConflict        = errors.New("policy version conflict")
	ErrInternalServer        = errors.New("internal server error")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbiddenRole         = errors.New("role is not allowed to manage policies")
	ErrInvalidPagination     = errors.New("invalid pagination parameters")
	ErrInvalidSearchCriteria = errors.New("invalid search criteria")
)
