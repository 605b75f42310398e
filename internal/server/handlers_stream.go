package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kinetra/posestream/internal/broadcast"
	"github.com/kinetra/posestream/internal/domain"
	"github.com/kinetra/posestream/internal/logging"
	"github.com/kinetra/posestream/internal/metrics"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Clients connect from arbitrary origins (game engines, viewers)
	},
}

// handleStream accepts one client connection: welcome handshake, register,
// then block on the read pump until the peer disconnects. Every failure in
// here is scoped to this connection; the listener keeps accepting.
func (s *Server) handleStream(c echo.Context) error {
	ip := c.RealIP()

	if !s.rateLimiter.Allow(ip) {
		metrics.WebSocketConnectionsRejected.WithLabelValues("rate_limit").Inc()
		return c.String(http.StatusTooManyRequests, "connection rate exceeded")
	}
	if !s.globalLimiter.Acquire() {
		metrics.WebSocketConnectionsRejected.WithLabelValues("global_limit").Inc()
		return c.String(http.StatusServiceUnavailable, "server at capacity")
	}
	if !s.ipLimiter.Acquire(ip) {
		s.globalLimiter.Release()
		metrics.WebSocketConnectionsRejected.WithLabelValues("ip_limit").Inc()
		return c.String(http.StatusServiceUnavailable, "too many connections from this address")
	}

	defer func() {
		s.globalLimiter.Release()
		s.ipLimiter.Release(ip)
	}()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		metrics.WebSocketConnectionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	s.streamClient(conn)
	return nil
}

// streamClient drives one upgraded connection: welcome handshake, register,
// read pump until the peer disconnects, deregister. A failure at any step
// aborts this connection only.
func (s *Server) streamClient(conn *websocket.Conn) {
	id := uuid.New()
	log := logging.WithClient(id.String())

	// Welcome handshake confirms the channel is live before registration.
	welcome, err := json.Marshal(domain.Welcome{Status: domain.StatusConnected})
	if err != nil {
		log.Error("Failed to marshal welcome message", "error", err)
		_ = conn.Close()
		return
	}
	_ = conn.SetWriteDeadline(s.clock.Now().Add(s.config.SendTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
		log.Warn("Welcome handshake failed", "error", err)
		metrics.WebSocketConnectionsTotal.WithLabelValues("error").Inc()
		_ = conn.Close()
		return
	}

	client := broadcast.NewClient(id, conn, s.clock, s.config.SendTimeout)
	if err := s.registry.Add(client); err != nil {
		log.Error("Failed to register client", "error", err)
		client.Close()
		return
	}

	metrics.WebSocketConnectionsTotal.WithLabelValues("success").Inc()
	log.Info("Client connected",
		"remote_addr", client.RemoteAddr(),
		"total_clients", s.registry.Count(),
	)

	// Read pump — blocks until the connection closes
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.registry.Remove(id)
	log.Info("Client disconnected", "total_clients", s.registry.Count())
}
