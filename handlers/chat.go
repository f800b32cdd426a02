package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"travellocal/models"
	"travellocal/services/chat"
	"travellocal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The mobile app is not a browser; there is no origin to check.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatRooms creates chat rooms on the backend.
type ChatRooms interface {
	CreateChatRoom(ctx context.Context, token string, req models.ChatRoomRequest) (*models.ChatRoom, error)
}

type ChatHandler struct {
	rooms          ChatRooms
	brokerURL      string
	reconnectDelay time.Duration
}

func NewChatHandler(rooms ChatRooms, brokerURL string, reconnectDelay time.Duration) *ChatHandler {
	return &ChatHandler{rooms: rooms, brokerURL: brokerURL, reconnectDelay: reconnectDelay}
}

// CreateRoomHandler opens a chat room with a tour host.
func (h *ChatHandler) CreateRoomHandler(c *gin.Context) {
	var req models.ChatRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.MsgInvalidRequest, err.Error())
		return
	}
	_, token := authContext(c)
	room, err := h.rooms.CreateChatRoom(c.Request.Context(), token, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// bridgeMessage is what the app sends over the bridged socket. An empty type
// means "send".
type bridgeMessage struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message,omitempty"`
}

type bridgeError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// BridgeHandler upgrades the app connection and relays it to the room's
// STOMP topic. Messages from the topic are forwarded unchanged. The app can
// switch rooms with {"type":"join","roomId":...}.
func (h *ChatHandler) BridgeHandler(c *gin.Context) {
	logger := getLogger(c)
	userID, token := authContext(c)
	roomID := c.Param("roomId")
	accept := c.GetHeader("Accept-Language")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Chat websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(v any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(v); err != nil {
			logger.Debug("Chat bridge write failed", zap.Error(err))
		}
	}
	forward := func(body json.RawMessage) { write(body) }
	fail := func(key utils.MessageKey) {
		write(bridgeError{Type: "error", Error: utils.Localize(accept, key)})
	}

	manager := chat.NewManager(func() *chat.Client {
		return chat.NewClient(h.brokerURL, token, h.reconnectDelay, logger)
	})
	defer manager.Close()

	ctx := c.Request.Context()
	if _, err := manager.Open(ctx, roomID, forward); err != nil {
		fail(utils.MsgChatUnavailable)
		return
	}
	logger.Info("Chat bridge opened", zap.String("userId", userID), zap.String("roomId", roomID))

	for {
		var in bridgeMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Chat bridge closed unexpectedly", zap.Error(err))
			}
			return
		}

		switch in.Type {
		case "join":
			if in.RoomID == "" {
				fail(utils.MsgInvalidRequest)
				continue
			}
			if _, err := manager.Open(ctx, in.RoomID, forward); err != nil {
				fail(utils.MsgChatUnavailable)
			}
		case "", "send":
			msg := models.ChatMessage{UserID: userID, Message: in.Message}
			if err := manager.Send(msg); err != nil {
				fail(utils.MsgChatUnavailable)
			}
		default:
			fail(utils.MsgInvalidRequest)
		}
	}
}
