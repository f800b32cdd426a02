package calendar

import (
	"context"
	"fmt"
	"time"

	"travellocal/models"

	"go.uber.org/zap"
)

// ReservationSource fetches reservations for a date window.
type ReservationSource interface {
	GetReservations(ctx context.Context, token, start, end string) ([]models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, token string, reservationID int, status models.RequestStatus) error
}

// Service builds month grids from freshly fetched reservations. Nothing is
// cached; every call fully replaces what the caller held before.
type Service struct {
	source ReservationSource
	loc    *time.Location
	logger *zap.Logger
}

// NewService creates a calendar service evaluating days in loc.
func NewService(source ReservationSource, loc *time.Location, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, loc: loc, logger: logger}
}

// Month fetches the reservations of the week-aligned grid for (year, month)
// and buckets them per day. A failed fetch is not fatal: the grid is built
// from an empty list and the error is reported in FetchError. selected is an
// optional YYYY-MM-DD date whose detail list is returned alongside.
func (s *Service) Month(ctx context.Context, token string, year, month int, selected string) (*models.CalendarResponse, error) {
	w, err := MonthWindow(year, month, s.loc)
	if err != nil {
		return nil, err
	}

	var selectedDay time.Time
	if selected != "" {
		selectedDay, err = time.ParseInLocation(dateLayout, selected, s.loc)
		if err != nil {
			return nil, fmt.Errorf("invalid selected date %q: %w", selected, err)
		}
	}

	resp := &models.CalendarResponse{
		Year:     year,
		Month:    month,
		Start:    w.Start.Format(dateLayout),
		End:      w.End.Format(dateLayout),
		FirstDOW: w.FirstDOW,
		LastDate: w.LastDate,
		Selected: []models.Reservation{},
	}

	reservations, err := s.source.GetReservations(ctx, token, resp.Start, resp.End)
	if err != nil {
		s.logger.Warn("calendar: reservation fetch failed, rendering empty grid",
			zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		resp.FetchError = err.Error()
		reservations = nil
	}
	s.logUnparseable(reservations)

	cells := BuildGrid(reservations, year, month, w.FirstDOW, w.LastDate, s.loc)
	resp.Cells = make([]models.CalendarCellView, 0, len(cells))
	for _, cell := range cells {
		resp.Cells = append(resp.Cells, CellView(cell))
	}

	if selected != "" {
		resp.SelectedDate = selected
		resp.Selected = ReservationsOnDay(reservations, selectedDay, s.loc)
	}
	return resp, nil
}

// UpdateStatus relays a reservation status change to the backend.
func (s *Service) UpdateStatus(ctx context.Context, token string, reservationID int, status models.RequestStatus) error {
	if !status.IsDecision() {
		return fmt.Errorf("reservation status %q is not a decision", status)
	}
	if err := s.source.UpdateReservationStatus(ctx, token, reservationID, status); err != nil {
		return fmt.Errorf("failed to update reservation %d: %w", reservationID, err)
	}
	return nil
}

// logUnparseable notes reservations that will be missing from every cell
// because their guide dates cannot be read.
func (s *Service) logUnparseable(reservations []models.Reservation) {
	for _, r := range reservations {
		_, okStart := parseDay(r.GuideStartDate, s.loc)
		_, okEnd := parseDay(r.GuideEndDate, s.loc)
		if !okStart || !okEnd {
			s.logger.Debug("calendar: reservation has unreadable guide dates",
				zap.Int("reservationID", r.ID),
				zap.String("guideStartDate", r.GuideStartDate),
				zap.String("guideEndDate", r.GuideEndDate))
		}
	}
}
