package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/timer"
)

const (
	routeStartSubproblem = "/api/track/start-subproblem"
	routeEndSubproblem   = "/api/track/end-subproblem"

	opStart = "start"
	opEnd   = "end"
)

type endRequest struct {
	SessionID string `json:"session_id"`
}

// handleStartSubproblem opens a subproblem timer and returns its session id.
func (s *Server) handleStartSubproblem(c *fiber.Ctx) error {
	var req timer.StartRequest
	if err := c.BodyParser(&req); err != nil {
		s.metrics.TimerRequest(opStart, fiber.StatusBadRequest)
		return badRequest(c, "invalid request body")
	}

	resp, code := s.tracker.StartSubproblem(c.UserContext(), req)
	s.metrics.TimerRequest(opStart, code)
	return c.Status(code).JSON(resp)
}

// handleEndSubproblem closes a subproblem timer and records its duration.
func (s *Server) handleEndSubproblem(c *fiber.Ctx) error {
	var req endRequest
	if err := c.BodyParser(&req); err != nil {
		s.metrics.TimerRequest(opEnd, fiber.StatusBadRequest)
		return badRequest(c, "invalid request body")
	}

	resp, code := s.tracker.EndSubproblem(c.UserContext(), req.SessionID)
	s.metrics.TimerRequest(opEnd, code)
	return c.Status(code).JSON(resp)
}
