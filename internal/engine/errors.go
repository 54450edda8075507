package engine

import "errors"

// The five recoverable failure classes every operation reports. Callers
// classify with errors.Is; messages carry the specifics.
var (
	ErrInvalidInterval    = errors.New("invalid reservation interval")
	ErrSchedulingConflict = errors.New("scheduling conflict")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
)
