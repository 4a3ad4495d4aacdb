package services

import "errors"

// Sentinel errors for state-machine precondition failures. Controllers map
// these to HTTP status codes; anything else is a server error.
var (
	ErrInvalidAction      = errors.New("invalid investment action")
	ErrInvalidState       = errors.New("investment is not in a valid state for this action")
	ErrProjectNotOpen     = errors.New("project is not open for investment")
	ErrInsufficientShares = errors.New("not enough shares available")
	ErrInvestorBanned     = errors.New("banned users cannot invest")
	ErrDuplicateActive    = errors.New("an active investment already exists for this project")
	ErrApprovalExpired    = errors.New("investment approval has expired")
	ErrResolutionRequired = errors.New("unresolved investments require a resolution")
)
