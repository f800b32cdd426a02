package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"travellocal/models"
)

// GetReservations lists the reservations whose guide dates fall in [start, end].
func (c *Client) GetReservations(ctx context.Context, token, start, end string) ([]models.Reservation, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)

	var reservations []models.Reservation
	if err := c.do(ctx, http.MethodGet, "/api/reservations/calendar", token, q, nil, &reservations); err != nil {
		return nil, err
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	return reservations, nil
}

// UpdateReservationStatus accepts or rejects a reservation.
func (c *Client) UpdateReservationStatus(ctx context.Context, token string, reservationID int, status models.RequestStatus) error {
	path := fmt.Sprintf("/api/reservations/%d/status", reservationID)
	return c.do(ctx, http.MethodPatch, path, token, nil, models.ReservationStatusUpdate{Status: status}, nil)
}
