package domain

import (
	"errors"
	"fmt"
)

var (
	ErrVenueNotFound       = errors.New("venue not found")
	ErrMaterialNotFound    = errors.New("material not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidRole         = errors.New("invalid role")

	ErrActivityNameRequired = errors.New("activity name required")
	ErrInvalidInterval      = errors.New("start time must be before end time")
	ErrStartTimeInPast      = errors.New("start time must be in the future")
	ErrNoLineItems          = errors.New("at least one material must be requested")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrDuplicateLineItem    = errors.New("duplicate material in line items")
	ErrReasonRequired       = errors.New("rejection reason required")

	ErrVenueUnavailable    = errors.New("venue is not available")
	ErrMaterialUnavailable = errors.New("material is not available")

	ErrVenueNameRequired    = errors.New("venue name required")
	ErrInvalidCapacity      = errors.New("capacity must be positive")
	ErrMaterialNameRequired = errors.New("material name required")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTotalQuantity = errors.New("total quantity must cover reserved stock")

	ErrPermissionDenied = errors.New("permission denied")

	// Sentinels for the data-carrying error types below; match with errors.Is.
	ErrSchedulingConflict     = errors.New("scheduling conflict")
	ErrInsufficientInventory  = errors.New("insufficient inventory")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// SchedulingConflictError reports an overlapping active booking on a venue.
type SchedulingConflictError struct {
	VenueID               string
	BlockingApplicationID string
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("venue %s already booked in this window by application %s", e.VenueID, e.BlockingApplicationID)
}

func (e *SchedulingConflictError) Is(target error) bool {
	return target == ErrSchedulingConflict
}

// InsufficientInventoryError reports a reserve attempt exceeding available stock.
type InsufficientInventoryError struct {
	MaterialID string
	Requested  int
	Available  int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("material %s has %d available, requested %d", e.MaterialID, e.Available, e.Requested)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

// InvalidStateTransitionError reports an action not legal for the current status.
type InvalidStateTransitionError struct {
	Status ApplicationStatus
	Action string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an application in status %s", e.Action, e.Status)
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}
