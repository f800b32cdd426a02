// Package chat is a STOMP client for the TravelLocal chat broker. Frames are
// carried one per websocket text message.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"travellocal/models"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// SendDestination is the application destination chat messages are published to.
	SendDestination = "/app/chat.sendMessage"

	defaultReconnectDelay = 5 * time.Second
	handshakeTimeout      = 10 * time.Second
	writeWait             = 10 * time.Second
)

var (
	ErrNotConnected     = errors.New("chat client is not connected")
	ErrAlreadyConnected = errors.New("chat client is already connected")
	ErrClosed           = errors.New("chat client was disconnected")
)

// State is the lifecycle state of a Client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Topic returns the subscription destination of a chat room.
func Topic(roomID string) string {
	return "/topic/chatroom/" + roomID
}

// MessageHandler receives the JSON body of every message delivered to the
// room. It runs on the client's reader goroutine.
type MessageHandler func(body json.RawMessage)

// outgoing is the published body. The broker expects exactly these fields.
type outgoing struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Client is one connection to one chat room.
type Client struct {
	url            string
	token          string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	logger         *zap.Logger

	mu        sync.Mutex
	state     State
	conn      *websocket.Conn
	roomID    string
	onMessage MessageHandler
	stop      chan struct{}

	writeMu sync.Mutex
}

// NewClient creates a disconnected client for the broker at wsURL. token, if
// set, is sent as a bearer Authorization header on CONNECT.
func NewClient(wsURL, token string, reconnectDelay time.Duration, logger *zap.Logger) *Client {
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:            wsURL,
		token:          token,
		reconnectDelay: reconnectDelay,
		dialer:         &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger:         logger,
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RoomID returns the room the client was last connected to.
func (c *Client) RoomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

// Connect opens the connection and subscribes to the room's topic. After a
// successful Connect the client reconnects on its own until Disconnect.
func (c *Client) Connect(ctx context.Context, roomID string, onMessage MessageHandler) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.roomID = roomID
	c.onMessage = onMessage
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	conn, err := c.dial(ctx, roomID)
	if err != nil {
		c.logger.Error("Chat connection failed", zap.String("roomId", roomID), zap.Error(err))
		c.mu.Lock()
		if c.stop == stop {
			c.state = StateDisconnected
			c.stop = nil
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	select {
	case <-stop:
		c.mu.Unlock()
		conn.Close()
		return ErrClosed
	default:
	}
	c.conn = conn
	c.state = StateConnected
	c.mu.Unlock()

	c.logger.Info("Chat connected", zap.String("roomId", roomID))
	go c.run(conn, stop)
	return nil
}

// Send publishes a message to the room. It does not queue: when the client is
// not connected the message is dropped and ErrNotConnected is returned.
func (c *Client) Send(msg models.ChatMessage) error {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()
	if state != StateConnected || conn == nil {
		c.logger.Warn("Chat message dropped, client not connected", zap.String("state", state.String()))
		return ErrNotConnected
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	body, err := json.Marshal(outgoing{ID: msg.ID, UserID: msg.UserID, Message: msg.Message})
	if err != nil {
		return fmt.Errorf("failed to encode chat message: %w", err)
	}
	f := frame.New(frame.SEND,
		"destination", SendDestination,
		"content-type", "application/json",
	)
	f.Body = body
	if err := c.writeFrame(conn, f); err != nil {
		c.logger.Error("Failed to send chat message", zap.Error(err))
		return err
	}
	return nil
}

// Disconnect closes the connection and stops reconnecting. It is a no-op on a
// client that is already disconnected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.state == StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	conn := c.conn
	close(c.stop)
	c.stop = nil
	c.conn = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	// Best effort; the socket is closed either way.
	_ = c.writeFrame(conn, frame.New(frame.DISCONNECT))
	c.writeMu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	c.logger.Info("Chat disconnected", zap.String("roomId", c.RoomID()))
	return conn.Close()
}

// run reads until the connection drops, then reconnects after the fixed delay
// until stop is closed.
func (c *Client) run(conn *websocket.Conn, stop chan struct{}) {
	for {
		err := c.readLoop(conn)

		c.mu.Lock()
		select {
		case <-stop:
			c.mu.Unlock()
			return
		default:
		}
		c.state = StateConnecting
		c.conn = nil
		roomID := c.roomID
		c.mu.Unlock()
		conn.Close()
		c.logger.Warn("Chat connection lost, reconnecting",
			zap.String("roomId", roomID),
			zap.Duration("delay", c.reconnectDelay),
			zap.Error(err))

		conn = c.reconnect(roomID, stop)
		if conn == nil {
			return
		}
	}
}

func (c *Client) reconnect(roomID string, stop chan struct{}) *websocket.Conn {
	timer := time.NewTimer(c.reconnectDelay)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return nil
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		conn, err := c.dial(ctx, roomID)
		cancel()
		if err != nil {
			c.logger.Error("Chat reconnect failed", zap.String("roomId", roomID), zap.Error(err))
			timer.Reset(c.reconnectDelay)
			continue
		}

		c.mu.Lock()
		select {
		case <-stop:
			c.mu.Unlock()
			conn.Close()
			return nil
		default:
		}
		c.conn = conn
		c.state = StateConnected
		c.mu.Unlock()
		c.logger.Info("Chat reconnected", zap.String("roomId", roomID))
		return conn
	}
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		f, err := readFrame(conn)
		if err != nil {
			return err
		}
		switch f.Command {
		case frame.MESSAGE:
			if !json.Valid(f.Body) {
				c.logger.Warn("Dropping non-JSON chat frame", zap.String("destination", f.Header.Get("destination")))
				continue
			}
			c.mu.Lock()
			handler := c.onMessage
			c.mu.Unlock()
			if handler != nil {
				handler(json.RawMessage(f.Body))
			}
		case frame.ERROR:
			return fmt.Errorf("broker error: %s", f.Header.Get("message"))
		}
	}
}

// dial opens the websocket, performs the STOMP handshake and subscribes to
// the room topic.
func (c *Client) dial(ctx context.Context, roomID string) (*websocket.Conn, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid chat url: %w", err)
	}
	conn, _, err := c.dialer.DialContext(ctx, c.url, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("failed to dial chat broker: %w", err)
	}

	connect := frame.New(frame.CONNECT,
		"accept-version", "1.2",
		"host", u.Hostname(),
		"heart-beat", "0,0",
	)
	if c.token != "" {
		connect.Header.Add("Authorization", "Bearer "+c.token)
	}
	if err := c.writeFrame(conn, connect); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send CONNECT: %w", err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(handshakeTimeout)
	}
	_ = conn.SetReadDeadline(deadline)
	reply, err := readFrame(conn)
	_ = conn.SetReadDeadline(time.Time{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read CONNECTED: %w", err)
	}
	switch reply.Command {
	case frame.CONNECTED:
	case frame.ERROR:
		conn.Close()
		return nil, fmt.Errorf("broker refused connection: %s", reply.Header.Get("message"))
	default:
		conn.Close()
		return nil, fmt.Errorf("unexpected %s frame during handshake", reply.Command)
	}

	subscribe := frame.New(frame.SUBSCRIBE,
		"id", uuid.NewString(),
		"destination", Topic(roomID),
		"ack", "auto",
	)
	if err := c.writeFrame(conn, subscribe); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return conn, nil
}

func (c *Client) writeFrame(conn *websocket.Conn, f *frame.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return writeFrame(conn, f)
}

func writeFrame(conn *websocket.Conn, f *frame.Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := frame.NewWriter(w).Write(f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// readFrame returns the next non-heartbeat frame.
func readFrame(conn *websocket.Conn) (*frame.Frame, error) {
	for {
		_, r, err := conn.NextReader()
		if err != nil {
			return nil, err
		}
		f, err := frame.NewReader(r).Read()
		if errors.Is(err, io.EOF) || (err == nil && f == nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}
