package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"rideengine/internal/repository"
)

// UnitOfWork runs repository calls inside one database transaction.
type UnitOfWork struct {
	db *sql.DB
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a UnitOfWork over db.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTx begins a transaction, hands fn transaction-bound repositories, and
// commits when fn succeeds.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	repos := repository.Repositories{
		Rides:         NewRideRepositoryWithTx(tx),
		Rejections:    NewRejectionRepositoryWithTx(tx),
		Cancellations: NewCancellationRepositoryWithTx(tx),
	}
	if err = fn(ctx, repos); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
