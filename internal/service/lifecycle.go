package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideengine/internal/domain"
	"rideengine/internal/logger"
	"rideengine/internal/repository"
)

// mutateFunc applies a transition's side effects to the copy being written.
type mutateFunc func(ride *domain.Ride, now time.Time)

// auditFunc writes the child record of a transition inside its transaction.
// from is the status the ride had when it was read.
type auditFunc func(ctx context.Context, repos repository.Repositories, ride *domain.Ride, from domain.RideStatus, now time.Time) error

// AcceptRide assigns driverID and freezes the final price.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.transition(ctx, rideID, domain.RideStatusAccepted, func(ride *domain.Ride, now time.Time) {
		price := FinalPrice(ride.BasePrice, ride.SurgeMultiplier)
		ride.DriverID = driverID
		ride.FinalPrice = &price
		ride.AcceptedAt = &now
	}, nil)
}

// RejectRideRequest contains the parameters for rejecting a ride.
type RejectRideRequest struct {
	RideID   string
	DriverID string
	Reason   domain.RejectionReason
	Notes    string
}

// RejectRide records the driver's rejection and moves the ride to the
// terminal rejected state. The ride is not offered to other drivers.
func (s *RideService) RejectRide(ctx context.Context, req RejectRideRequest) (*domain.Ride, error) {
	driverID := strings.TrimSpace(req.DriverID)
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !req.Reason.Valid() {
		return nil, ErrInvalidRejectionReason
	}
	var notes *string
	if n := strings.TrimSpace(req.Notes); n != "" {
		notes = &n
	}

	return s.transition(ctx, req.RideID, domain.RideStatusRejected, nil,
		func(ctx context.Context, repos repository.Repositories, ride *domain.Ride, _ domain.RideStatus, now time.Time) error {
			return repos.Rejections.Create(ctx, &domain.Rejection{
				ID:        uuid.New().String(),
				RideID:    ride.ID,
				DriverID:  driverID,
				Reason:    req.Reason,
				Notes:     notes,
				CreatedAt: now,
			})
		})
}

// DriverArrived marks the driver as waiting at the pickup point.
func (s *RideService) DriverArrived(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, domain.RideStatusDriverArrived, func(ride *domain.Ride, now time.Time) {
		ride.DriverArrivedAt = &now
	}, nil)
}

// StartRide marks the rider as picked up.
func (s *RideService) StartRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, domain.RideStatusInProgress, func(ride *domain.Ride, now time.Time) {
		ride.StartedAt = &now
	}, nil)
}

// CompleteRide marks the ride as finished.
func (s *RideService) CompleteRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	return s.transition(ctx, rideID, domain.RideStatusCompleted, func(ride *domain.Ride, now time.Time) {
		ride.CompletedAt = &now
	}, nil)
}

// CancelRide cancels a non-terminal ride and records the penalty owed by
// cancelledBy for the status the ride was in.
func (s *RideService) CancelRide(ctx context.Context, rideID string, cancelledBy domain.CancelledBy) (*domain.Ride, error) {
	if !cancelledBy.Valid() {
		return nil, ErrInvalidCancelledBy
	}

	return s.transition(ctx, rideID, domain.RideStatusCancelled,
		func(ride *domain.Ride, now time.Time) {
			ride.CancelledAt = &now
		},
		func(ctx context.Context, repos repository.Repositories, ride *domain.Ride, from domain.RideStatus, now time.Time) error {
			return repos.Cancellations.Create(ctx, &domain.Cancellation{
				ID:             uuid.New().String(),
				RideID:         ride.ID,
				CancelledBy:    cancelledBy,
				PenaltyApplied: CancellationPenalty(cancelledBy, from),
				CreatedAt:      now,
			})
		})
}

// transition re-reads the ride, checks the state machine, and writes the new
// status guarded by the status it read. When audit is set, the guarded
// update and the audit insert share one transaction with the update first.
func (s *RideService) transition(
	ctx context.Context,
	rideID string,
	to domain.RideStatus,
	mutate mutateFunc,
	audit auditFunc,
) (*domain.Ride, error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	ctx = logger.WithRideID(ctx, rideID)

	current, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	from := current.Status
	if !domain.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: cannot move ride from %s to %s", ErrPreconditionFailed, from, to)
	}

	now := s.now()
	next := current.Clone()
	next.Status = to
	next.UpdatedAt = now
	if mutate != nil {
		mutate(next, now)
	}

	if audit == nil {
		err = s.rides.UpdateIfStatus(ctx, next, from)
	} else {
		err = s.uow.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			if err := repos.Rides.UpdateIfStatus(ctx, next, from); err != nil {
				return err
			}
			return audit(ctx, repos, next, from, now)
		})
	}
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) || errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: ride left %s before the update", ErrPreconditionFailed, from)
		}
		return nil, err
	}

	logger.Info(ctx, s.log, "ride_transition", "ride status changed",
		"from", string(from),
		"to", string(to),
	)
	s.publish(ctx, newRideEvent(next, from))

	return next, nil
}
