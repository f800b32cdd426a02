package unlockRepo

import (
	"context"
	"errors"

	"travellocal/models"
)

// ErrNotFound is returned when no ledger entry exists for a user and tour.
var ErrNotFound = errors.New("unlock record not found")

// UnlockRepository is the unlock ledger. There is at most one record per
// (userId, tourProgramId).
type UnlockRepository interface {
	// Acquire returns the record for the pair, inserting a pending one when none exists.
	Acquire(ctx context.Context, userID string, tourProgramID int, method models.UnlockMethod) (*models.UnlockRecord, error)
	// Get returns the record for the pair or ErrNotFound.
	Get(ctx context.Context, userID string, tourProgramID int) (*models.UnlockRecord, error)
	// Transition moves the record from one state to another. It reports false
	// when the record was not in the from state.
	Transition(ctx context.Context, userID string, tourProgramID int, from, to models.UnlockState, lastErr string) (bool, error)
	// BeginCharge claims a pending record for charging and stores the amount.
	// It reports false when the record was not pending.
	BeginCharge(ctx context.Context, userID string, tourProgramID int, points int64) (bool, error)
	// SetPaymentIntent records the payment intent backing the unlock.
	SetPaymentIntent(ctx context.Context, userID string, tourProgramID int, intentID string) error
	// RecordAttempt increments the attempt counter and stores the last error.
	RecordAttempt(ctx context.Context, userID string, tourProgramID int, lastErr string) error
}
