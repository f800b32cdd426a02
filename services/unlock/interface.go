package unlock

import (
	"context"

	"travellocal/models"
)

// Backend is the part of the TravelLocal API the unlock flow talks to.
type Backend interface {
	GetTourProgram(ctx context.Context, token string, tourProgramID int) (*models.TourProgram, error)
	GetUnlockStatus(ctx context.Context, token string, tourProgramID int) (bool, error)
	MarkUnlocked(ctx context.Context, token string, tourProgramID int) error
	GetPointBalance(ctx context.Context, token string) (int64, error)
	SpendPoints(ctx context.Context, token string, req models.SpendPointsRequest) error
}

// DeviceStore is the device-local unlocked flag and the stored access token.
type DeviceStore interface {
	GetAccessToken(ctx context.Context, userID string) (string, error)
	SetScheduleUnlocked(ctx context.Context, userID string, tourProgramID int) error
	IsScheduleUnlocked(ctx context.Context, userID string, tourProgramID int) (bool, error)
}

// Enqueuer schedules a background retry of the mark-unlocked step.
type Enqueuer interface {
	EnqueueReconcile(ctx context.Context, payload models.ReconcilePayload) error
}

// PaymentGateway creates and inspects card payments for the cash unlock.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntentResponse, error)
	// IntentStatus returns whether the intent succeeded and its metadata.
	IntentStatus(ctx context.Context, intentID string) (succeeded bool, metadata map[string]string, err error)
}

// Service is the schedule unlock flow.
type Service interface {
	Status(ctx context.Context, userID, token string, tourProgramID int) (bool, error)
	Schedule(ctx context.Context, userID, token string, tourProgramID int) (*models.ScheduleView, error)
	Quote(ctx context.Context, userID, token string, tourProgramID int) (*models.UnlockQuote, error)
	UnlockWithPoints(ctx context.Context, userID, token string, tourProgramID int) (*models.UnlockResult, error)
	CreatePayment(ctx context.Context, userID, token string, tourProgramID int) (*models.PaymentIntentResponse, error)
	ConfirmPayment(ctx context.Context, userID, token string, tourProgramID int, intentID string) (*models.UnlockResult, error)
	Reconcile(ctx context.Context, payload models.ReconcilePayload) error
}
