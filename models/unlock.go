package models

import "time"

// UnlockState tracks how far an unlock attempt progressed.
type UnlockState string

const (
	UnlockPending     UnlockState = "pending"
	UnlockCharging    UnlockState = "charging" // spend in flight, not yet confirmed
	UnlockPointsSpent UnlockState = "points_spent"
	UnlockUnlocked    UnlockState = "unlocked"
)

// UnlockMethod is how the user paid for the schedule.
type UnlockMethod string

const (
	UnlockByPoints  UnlockMethod = "points"
	UnlockByPayment UnlockMethod = "payment"
)

// UnlockRecord is the ledger entry for an unlock of one tour by one user.
// (UserID, TourProgramID) is unique.
type UnlockRecord struct {
	ID              string       `bson:"id" json:"id"`
	UserID          string       `bson:"userId" json:"userId"`
	TourProgramID   int          `bson:"tourProgramId" json:"tourProgramId"`
	Method          UnlockMethod `bson:"method" json:"method"`
	State           UnlockState  `bson:"state" json:"state"`
	PointsCharged   int64        `bson:"pointsCharged" json:"pointsCharged"`
	PaymentIntentID string       `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	Attempts        int          `bson:"attempts" json:"attempts"`
	LastError       string       `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// PointBalance is the user's in-app point balance.
type PointBalance struct {
	Balance int64 `json:"balance"`
}

// SpendPointsRequest is sent to the backend when points are used.
type SpendPointsRequest struct {
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason"`
	TourProgramID int    `json:"tourProgramId"`
}

// UnlockQuote tells the app what an unlock will cost.
type UnlockQuote struct {
	TourProgramID int   `json:"tourProgramId"`
	Balance       int64 `json:"balance"`
	Cost          int64 `json:"cost"`
	Remaining     int64 `json:"remaining"`
	Affordable    bool  `json:"affordable"`
	Unlocked      bool  `json:"unlocked"`
}

// UnlockResult is returned once an unlock request was handled.
type UnlockResult struct {
	TourProgramID int         `json:"tourProgramId"`
	State         UnlockState `json:"state"`
	Unlocked      bool        `json:"unlocked"`
	PointsCharged int64       `json:"pointsCharged"`
	// Synced is false when the backend has not yet acknowledged the unlock.
	Synced bool `json:"synced"`
}

// PaymentIntentResponse hands the app what it needs to present the payment screen.
type PaymentIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// ReconcilePayload is the asynq payload for retrying the mark-unlocked step.
type ReconcilePayload struct {
	UserID        string `json:"userId"`
	TourProgramID int    `json:"tourProgramId"`
	AccessToken   string `json:"accessToken"`
}
