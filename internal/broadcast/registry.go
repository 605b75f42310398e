package broadcast

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/kinetra/posestream/internal/metrics"
)

// Client is one accepted connection as the broadcaster sees it: a unique
// id plus an outbound-send capability backed by a dedicated write goroutine.
type Client struct {
	id     uuid.UUID
	remote string
	writer *clientWriter
}

// NewClient wraps an upgraded connection and starts its write goroutine.
// writeTimeout bounds every individual network send.
func NewClient(id uuid.UUID, conn *websocket.Conn, clock clockwork.Clock, writeTimeout time.Duration) *Client {
	return &Client{
		id:     id,
		remote: conn.RemoteAddr().String(),
		writer: newClientWriter(conn, clock, writeTimeout),
	}
}

func (c *Client) ID() uuid.UUID { return c.id }

func (c *Client) RemoteAddr() string { return c.remote }

// Send queues data for delivery without blocking. False reports a failed
// send: the client's buffer is full or its connection is gone.
func (c *Client) Send(data []byte) bool {
	return c.writer.trySend(data)
}

// Close tears the connection down immediately. Idempotent.
func (c *Client) Close() {
	c.writer.stop()
}

// CloseGraceful sends a close frame with reason before tearing down.
func (c *Client) CloseGraceful(reason string) {
	c.writer.stopGraceful(reason)
}

// ClientRegistry tracks the currently connected clients. All methods are
// safe for concurrent use. Broadcast passes iterate a Snapshot copy, never
// the live map, so registration and eviction never wait on client I/O.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[uuid.UUID]*Client)}
}

// Add registers the client. Ids are unique per connection, so a duplicate
// is a programming error and is rejected.
func (r *ClientRegistry) Add(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[c.id]; exists {
		return fmt.Errorf("client %s already registered", c.id)
	}
	r.clients[c.id] = c
	metrics.BroadcasterConnectedClients.Set(float64(len(r.clients)))
	return nil
}

// Remove deregisters and closes the client with the given id. Idempotent:
// the read pump and the broadcaster may both report the same dead
// connection without double-closing it.
func (r *ClientRegistry) Remove(id uuid.UUID) {
	r.mu.Lock()
	c, exists := r.clients[id]
	if exists {
		delete(r.clients, id)
		metrics.BroadcasterConnectedClients.Set(float64(len(r.clients)))
	}
	r.mu.Unlock()

	// Close outside the lock: stop waits on the write goroutine.
	if exists {
		c.Close()
	}
}

// Snapshot returns a point-in-time copy of the membership. The caller may
// perform network sends against it without holding any registry lock.
func (r *ClientRegistry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// Count reports the current number of registered clients.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAll deregisters every client and closes each one with a close frame.
// Used during graceful shutdown.
func (r *ClientRegistry) CloseAll(reason string) {
	r.mu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = make(map[uuid.UUID]*Client)
	metrics.BroadcasterConnectedClients.Set(0)
	r.mu.Unlock()

	for _, c := range clients {
		c.CloseGraceful(reason)
	}
}
