package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stompBroker accepts STOMP over websocket and records what each upstream
// connection did.
type stompBroker struct {
	server *httptest.Server

	mu    sync.Mutex
	conns []*brokerConn
}

type brokerConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}

	subscription   string
	destination    string
	sent           []*frame.Frame
	gotDisconnect  bool
	previousClosed bool
}

func newStompBroker(t *testing.T) *stompBroker {
	b := &stompBroker{}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.serve(ws)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *stompBroker) url() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http")
}

func (b *stompBroker) serve(ws *websocket.Conn) {
	bc := &brokerConn{ws: ws, done: make(chan struct{})}
	b.mu.Lock()
	var previous *brokerConn
	if n := len(b.conns); n > 0 {
		previous = b.conns[n-1]
	}
	b.conns = append(b.conns, bc)
	b.mu.Unlock()
	defer close(bc.done)
	defer ws.Close()

	for {
		f, err := readStomp(ws)
		if err != nil {
			return
		}
		switch f.Command {
		case frame.CONNECT:
			if previous != nil {
				select {
				case <-previous.done:
					b.update(func() { bc.previousClosed = true })
				case <-time.After(2 * time.Second):
				}
			}
			_ = bc.write(frame.New(frame.CONNECTED, "version", "1.2"))
		case frame.SUBSCRIBE:
			b.update(func() {
				bc.subscription = f.Header.Get("id")
				bc.destination = f.Header.Get("destination")
			})
		case frame.SEND:
			b.update(func() { bc.sent = append(bc.sent, f) })
		case frame.DISCONNECT:
			b.update(func() { bc.gotDisconnect = true })
			return
		}
	}
}

func (b *stompBroker) update(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

// conn returns a copy of the i-th connection's record, or nil.
func (b *stompBroker) conn(i int) *brokerConn {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= len(b.conns) {
		return nil
	}
	c := b.conns[i]
	return &brokerConn{
		subscription:   c.subscription,
		destination:    c.destination,
		sent:           append([]*frame.Frame(nil), c.sent...),
		gotDisconnect:  c.gotDisconnect,
		previousClosed: c.previousClosed,
	}
}

func (b *stompBroker) publish(t *testing.T, i int, body string) {
	b.mu.Lock()
	c := b.conns[i]
	sub, dest := c.subscription, c.destination
	b.mu.Unlock()

	msg := frame.New(frame.MESSAGE,
		"subscription", sub,
		"destination", dest,
		"message-id", "m-1",
		"content-type", "application/json",
	)
	msg.Body = []byte(body)
	require.NoError(t, c.write(msg))
}

func (c *brokerConn) write(f *frame.Frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	w, err := c.ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := frame.NewWriter(w).Write(f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func readStomp(ws *websocket.Conn) (*frame.Frame, error) {
	for {
		_, r, err := ws.NextReader()
		if err != nil {
			return nil, err
		}
		f, err := frame.NewReader(r).Read()
		if errors.Is(err, io.EOF) || (err == nil && f == nil) {
			continue
		}
		return f, err
	}
}

func subscribedTo(b *stompBroker, i int, destination string) func() bool {
	return func() bool {
		c := b.conn(i)
		return c != nil && c.destination == destination
	}
}

func TestChatBridgeRelaysBothWaysAndSwitchesRooms(t *testing.T) {
	broker := newStompBroker(t)
	h := NewChatHandler(fakeRooms{}, broker.url(), time.Second)
	r := testRouter()
	r.GET("/ws/chat/:roomId", h.BridgeHandler)
	srv := httptest.NewServer(r)
	defer srv.Close()

	app, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat/9", nil)
	require.NoError(t, err)
	defer app.Close()
	require.Eventually(t, subscribedTo(broker, 0, "/topic/chatroom/9"), 3*time.Second, 10*time.Millisecond)

	// App -> topic.
	require.NoError(t, app.WriteJSON(map[string]string{"type": "send", "message": "hello"}))
	require.Eventually(t, func() bool { return len(broker.conn(0).sent) == 1 }, 3*time.Second, 10*time.Millisecond)
	sent := broker.conn(0).sent[0]
	assert.Equal(t, "/app/chat.sendMessage", sent.Header.Get("destination"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(sent.Body, &body))
	assert.Equal(t, "u1", body["userId"])
	assert.Equal(t, "hello", body["message"])
	assert.NotEmpty(t, body["id"])
	assert.Len(t, body, 3)

	// Topic -> app, unchanged.
	incoming := `{"id":"m1","userId":"host-1","message":"see you at 9","sentAt":"2025-06-01T09:00:00","extra":{"pinned":true}}`
	broker.publish(t, 0, incoming)
	require.NoError(t, app.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, got, err := app.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, incoming, string(got))

	// Joining another room tears down the first upstream connection before
	// the next one connects.
	require.NoError(t, app.WriteJSON(map[string]string{"type": "join", "roomId": "10"}))
	require.Eventually(t, subscribedTo(broker, 1, "/topic/chatroom/10"), 3*time.Second, 10*time.Millisecond)
	assert.True(t, broker.conn(0).gotDisconnect)
	assert.True(t, broker.conn(1).previousClosed)

	require.NoError(t, app.WriteJSON(map[string]string{"message": "moved"}))
	require.Eventually(t, func() bool { return len(broker.conn(1).sent) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Len(t, broker.conn(0).sent, 1)

	// Unknown message types are answered with an error frame.
	require.NoError(t, app.WriteJSON(map[string]string{"type": "typing"}))
	var errMsg bridgeError
	require.NoError(t, app.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, app.ReadJSON(&errMsg))
	assert.Equal(t, "error", errMsg.Type)
	assert.NotEmpty(t, errMsg.Error)
}
