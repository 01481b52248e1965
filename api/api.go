// Package api provides the tutoring HTTP API: streamed tutor replies,
// one-shot completions and the subproblem timer.
package api

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/api/worker"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/eventstream"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/metrics"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/timer"
)

// Server is the tutoring API server.
type Server struct {
	config   Config
	provider provider.Provider
	tracker  *timer.Tracker
	pool     *worker.Pool
	metrics  *metrics.Metrics
	logger   *zap.Logger
	app      *fiber.App

	// ctx is cancelled on Shutdown so open streams end.
	ctx    context.Context
	cancel context.CancelFunc
}

// Deps are the collaborators the server is built on. Pool may be nil, in
// which case no events are published.
type Deps struct {
	Provider provider.Provider
	Storer   storage.Driver
	Pool     *worker.Pool
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// NewServer creates a new API server.
// The storer and pool are injected so they can be shared and closed by the
// caller.
func NewServer(config Config, deps Deps) (*Server, error) {
	if deps.Provider == nil {
		return nil, errors.New("completion provider is required")
	}
	if deps.Storer == nil {
		return nil, errors.New("storage driver is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctx:      ctx,
		cancel:   cancel,
		config:   config,
		provider: deps.Provider,
		pool:     deps.Pool,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		app:      app,
	}
	s.tracker = timer.NewTracker(timer.Config{
		Driver: deps.Storer,
		Logger: deps.Logger,
		OnEnd:  s.timerEnded,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(config.CORSOrigins),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Get("/ping", s.handlePing)
	app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	app.Post("/chat", s.handleChat)
	app.Post("/recap", s.handleRecap)
	app.Post("/createSolution", s.handleCreateSolution)
	app.Post("/checkResponse", s.handleCheckResponse)

	app.Post("/api/ai", s.handleTutor)
	app.Post("/api/hint", s.handleHint)
	app.Post("/api/track/start-subproblem", s.handleStartSubproblem)
	app.Post("/api/track/end-subproblem", s.handleEndSubproblem)

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("provider", s.provider.Name()),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	s.cancel()
	return s.app.Shutdown()
}

func (s *Server) publish(ev *eventstream.Event) {
	if s.pool == nil {
		return
	}
	s.pool.Enqueue(worker.Job{Event: ev})
}

func (s *Server) timerEnded(e timer.Ended) {
	s.publish(eventstream.NewTimerEnded(routeEndSubproblem, eventstream.TimerEnded{
		SessionID:       e.SessionID,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		DurationSeconds: e.DurationSeconds,
	}))
}

// corsOrigins normalises a comma separated origin list for the CORS
// middleware. Empty means any origin.
func corsOrigins(raw string) string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
