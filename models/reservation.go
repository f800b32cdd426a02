package models

// RequestStatus is the approval state of a reservation.
type RequestStatus string

const (
	StatusAccepted RequestStatus = "ACCEPTED"
	StatusPending  RequestStatus = "PENDING"
	StatusRejected RequestStatus = "REJECTED"
)

// IsDecision reports whether s is a host decision on a pending reservation.
func (s RequestStatus) IsDecision() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Reservation is a booked tour-program slot as consumed by the calendar.
type Reservation struct {
	ID               int           `json:"id"`
	TourProgramTitle string        `json:"tourProgramTitle"`
	GuideStartDate   string        `json:"guideStartDate"` // date-time string, inclusive
	GuideEndDate     string        `json:"guideEndDate"`   // date-time string, inclusive
	NumOfPeople      int           `json:"numOfPeople"`
	RequestStatus    RequestStatus `json:"requestStatus"`
}

// ReservationStatusUpdate is the body of a reservation status change.
type ReservationStatusUpdate struct {
	Status RequestStatus `json:"status" binding:"required"`
}
