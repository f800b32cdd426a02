package backend

import (
	"context"
	"fmt"
	"net/http"

	"travellocal/models"
)

// GetTourProgram returns the tour-detail record including its pointPaid flag.
func (c *Client) GetTourProgram(ctx context.Context, token string, tourProgramID int) (*models.TourProgram, error) {
	var tour models.TourProgram
	path := fmt.Sprintf("/api/tour-programs/%d", tourProgramID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &tour); err != nil {
		return nil, err
	}
	return &tour, nil
}

// GetUnlockStatus asks whether the schedule is unlocked for the token's user.
func (c *Client) GetUnlockStatus(ctx context.Context, token string, tourProgramID int) (bool, error) {
	var status struct {
		Unlocked bool `json:"unlocked"`
	}
	path := fmt.Sprintf("/api/tour-programs/%d/unlock", tourProgramID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, nil, &status); err != nil {
		return false, err
	}
	return status.Unlocked, nil
}

// MarkUnlocked records on the backend that the schedule was unlocked.
func (c *Client) MarkUnlocked(ctx context.Context, token string, tourProgramID int) error {
	path := fmt.Sprintf("/api/tour-programs/%d/unlock", tourProgramID)
	return c.do(ctx, http.MethodPost, path, token, nil, map[string]bool{"unlocked": true}, nil)
}
