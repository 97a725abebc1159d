package models

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every input rejection. Callers treat it as a no-op.
var ErrValidation = errors.New("validation error")

var (
	ErrInvalidTableNumber = fmt.Errorf("%w: table number must be positive", ErrValidation)
	ErrDuplicateTable     = fmt.Errorf("%w: table number already exists", ErrValidation)
	ErrInvalidCapacity    = fmt.Errorf("%w: max guests must be positive", ErrValidation)
	ErrInvalidStatus      = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidGuests      = fmt.Errorf("%w: guest count must be at least 1", ErrValidation)
	ErrInvalidMinutes     = fmt.Errorf("%w: minutes must be positive", ErrValidation)
	ErrTableNotOccupied   = fmt.Errorf("%w: table is not occupied", ErrValidation)
	ErrNoActiveTimer      = fmt.Errorf("%w: table has no active timer", ErrValidation)
	ErrInvalidSetName     = fmt.Errorf("%w: table set name is required", ErrValidation)
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrTableSetNotFound = errors.New("table set not found")
	ErrAllocationFailed = errors.New("no vacant table fits the party")
)
