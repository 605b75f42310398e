package server

import (
	"github.com/kinetra/posestream/internal/version"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness reports ready once the listener is serving. The pipeline
// has no external dependencies to probe; a wedged broadcast loop surfaces
// through the stop-timeout and pass-duration metrics instead.
func (s *Server) handleReadiness(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(200, map[string]any{
		"connected_clients": s.registry.Count(),
		"queued_samples":    s.queue.Len(),
		"uptime_seconds":    s.clock.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
