package model

import "errors"

// Common errors used across the application
var (
	// Identity errors
	ErrUnknownRegion    = errors.New("unknown player region")
	ErrUnknownContinent = errors.New("unknown continent")

	// Identity provider errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrNoRegionPresence = errors.New("account has no presence in region")
	ErrBudgetExhausted  = errors.New("identity provider request budget exhausted")

	// Registry errors
	ErrConnectionNotFound = errors.New("connection not found")
	ErrInvalidTransition  = errors.New("invalid connection state transition")

	// Transport errors
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)
