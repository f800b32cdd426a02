package backend

import (
	"context"
	"net/http"

	"travellocal/models"
)

// CreateChatRoom opens (or returns the existing) room between the user and a host.
func (c *Client) CreateChatRoom(ctx context.Context, token string, req models.ChatRoomRequest) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := c.do(ctx, http.MethodPost, "/api/chat/rooms", token, nil, req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}
