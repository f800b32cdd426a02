package backend

import (
	"context"
	"net/http"

	"travellocal/models"
)

// GetPointBalance returns the user's current point balance.
func (c *Client) GetPointBalance(ctx context.Context, token string) (int64, error) {
	var balance models.PointBalance
	if err := c.do(ctx, http.MethodGet, "/api/points/balance", token, nil, nil, &balance); err != nil {
		return 0, err
	}
	return balance.Balance, nil
}

// SpendPoints deducts points from the user's balance.
func (c *Client) SpendPoints(ctx context.Context, token string, req models.SpendPointsRequest) error {
	return c.do(ctx, http.MethodPost, "/api/points/use", token, nil, req, nil)
}

// VerifyToken checks that the backend accepts the token. The balance read is
// the cheapest authenticated call the API offers.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	_, err := c.GetPointBalance(ctx, token)
	return err
}
