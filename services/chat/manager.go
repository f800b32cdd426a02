package chat

import (
	"context"
	"sync"

	"travellocal/models"
)

// Manager owns at most one active Client. Opening a room disconnects the
// previous one first.
type Manager struct {
	mu        sync.Mutex
	active    *Client
	newClient func() *Client
}

// NewManager creates a manager that builds clients with newClient.
func NewManager(newClient func() *Client) *Manager {
	return &Manager{newClient: newClient}
}

// Open tears down the active client, if any, and connects a new one to roomID.
func (m *Manager) Open(ctx context.Context, roomID string, onMessage MessageHandler) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		_ = m.active.Disconnect()
		m.active = nil
	}

	client := m.newClient()
	if err := client.Connect(ctx, roomID, onMessage); err != nil {
		return nil, err
	}
	m.active = client
	return client, nil
}

// Active returns the active client or nil.
func (m *Manager) Active() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Send publishes through the active client.
func (m *Manager) Send(msg models.ChatMessage) error {
	client := m.Active()
	if client == nil {
		return ErrNotConnected
	}
	return client.Send(msg)
}

// Close disconnects the active client.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	err := m.active.Disconnect()
	m.active = nil
	return err
}
