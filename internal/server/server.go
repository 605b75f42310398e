package server

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kinetra/posestream/internal/broadcast"
	"github.com/kinetra/posestream/internal/config"
	"github.com/kinetra/posestream/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo          *echo.Echo
	config        *config.Config
	clock         clockwork.Clock
	queue         *broadcast.SampleQueue
	registry      *broadcast.ClientRegistry
	broadcaster   *broadcast.Broadcaster
	globalLimiter *GlobalConnectionLimiter
	ipLimiter     *IPConnectionLimiter
	rateLimiter   *ConnectionRateLimiter
	startTime     time.Time
}

// NewServer wires one SampleQueue and one ClientRegistry into a broadcaster
// and the HTTP listener. The broadcaster's poll loop starts immediately;
// ticks against an empty queue and registry are no-ops, so broadcasting is
// effectively live once Start brings the listener up.
func NewServer(cfg *config.Config, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	queue := broadcast.NewSampleQueue()
	registry := broadcast.NewClientRegistry()

	srv := &Server{
		echo:          e,
		config:        cfg,
		clock:         clock,
		queue:         queue,
		registry:      registry,
		broadcaster:   broadcast.NewBroadcaster(queue, registry, clock, cfg.PollInterval),
		globalLimiter: NewGlobalConnectionLimiter(cfg.MaxClients),
		ipLimiter:     NewIPConnectionLimiter(cfg.MaxClientsPerIP),
		rateLimiter:   NewConnectionRateLimiter(cfg.ConnectionRate, cfg.ConnectionBurst),
		startTime:     clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

// Enqueue is the sole ingress point for the pose source. It never blocks
// and is valid in every lifecycle phase; samples enqueued after shutdown
// began are simply never delivered.
func (s *Server) Enqueue(sample domain.Sample) {
	s.queue.Enqueue(sample)
}

// Start runs the listener and blocks until shutdown or a listener-fatal
// error (returned to the caller). Clients registered before a listener
// failure keep being served by the broadcaster.
func (s *Server) Start() error {
	return s.echo.Start(s.config.Addr())
}

// Shutdown stops accepting new connections, lets the broadcaster finish
// its current pass, then closes every registered client.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.broadcaster.Stop()
	return err
}

// ConnectedClientCount reports the current number of registered clients.
func (s *Server) ConnectedClientCount() int {
	return s.registry.Count()
}
