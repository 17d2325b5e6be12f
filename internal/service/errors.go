package service

import (
	"errors"
	"fmt"

	"rideengine/internal/repository"
)

var (
	// ErrPreconditionFailed is returned when a ride is not in a status that
	// allows the requested transition, including when it changed concurrently.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrValidation is the parent of every input validation error.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the referenced ride does not exist.
	ErrNotFound = repository.ErrNotFound
)

var (
	ErrInvalidRideID          = fmt.Errorf("%w: ride id is required", ErrValidation)
	ErrInvalidRiderID         = fmt.Errorf("%w: rider id is required", ErrValidation)
	ErrInvalidDriverID        = fmt.Errorf("%w: driver id is required", ErrValidation)
	ErrInvalidPickupAddress   = fmt.Errorf("%w: pickup address is required", ErrValidation)
	ErrInvalidDropoffAddress  = fmt.Errorf("%w: dropoff address is required", ErrValidation)
	ErrInvalidPickupLocation  = fmt.Errorf("%w: invalid pickup coordinates", ErrValidation)
	ErrInvalidDropoffLocation = fmt.Errorf("%w: invalid dropoff coordinates", ErrValidation)
	ErrInvalidRejectionReason = fmt.Errorf("%w: unknown rejection reason", ErrValidation)
	ErrInvalidCancelledBy     = fmt.Errorf("%w: cancelled_by must be rider, driver or system", ErrValidation)
	ErrInvalidStatusFilter    = fmt.Errorf("%w: unknown ride status", ErrValidation)
	ErrInvalidLocation        = fmt.Errorf("%w: invalid coordinates", ErrValidation)
)
