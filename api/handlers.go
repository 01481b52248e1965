package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/prompt"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/utils"
)

const (
	routeCreateSolution = "/createSolution"
	routeCheckResponse  = "/checkResponse"
	routeHint           = "/api/hint"

	// previewLen bounds prompt and reply text in debug logs.
	previewLen = 120
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}

// SolutionResponse is the /createSolution reply.
type SolutionResponse struct {
	ModelReasoning string       `json:"model_reasoning"`
	Response       prompt.Steps `json:"response"`
}

type solutionRequest struct {
	Message struct {
		Messages struct {
			Concept     string `json:"concept"`
			ProblemDesc string `json:"problemDesc"`
		} `json:"messages"`
	} `json:"message"`
}

type checkRequest struct {
	Message       conversation `json:"message"`
	CorrectAnswer string       `json:"correct_answer"`
}

// HintResponse is the /api/hint reply.
type HintResponse struct {
	Hint string `json:"hint"`
}

type hintRequest struct {
	HintLevel          prompt.HintLevel `json:"hint_level"`
	ProblemText        string           `json:"problem_text"`
	SubProblemText     string           `json:"sub_problem_text"`
	SubproblemSolution string           `json:"subproblem_solution"`
	ChatHistory        prompt.History   `json:"chat_history"`
	UserCode           string           `json:"user_code"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleCreateSolution asks the reasoning model for a step by step solution.
func (s *Server) handleCreateSolution(c *fiber.Ctx) error {
	var req solutionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	msgs := req.Message.Messages
	text, err := s.complete(c.UserContext(), routeCreateSolution,
		prompt.Single(s.config.ReasoningModel, prompt.Solution(msgs.ProblemDesc, msgs.Concept)))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "completion failed"})
	}

	reasoning, answer := prompt.SplitReasoning(text)
	return c.JSON(SolutionResponse{
		ModelReasoning: reasoning,
		Response:       prompt.ParseSteps(answer),
	})
}

// handleCheckResponse judges the learner's last reply and returns
// [student_mistake, strategy].
func (s *Server) handleCheckResponse(c *fiber.Ctx) error {
	var req checkRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	text, err := s.complete(c.UserContext(), routeCheckResponse,
		prompt.Conversation(s.config.ChatModel, req.Message.Messages, prompt.Check(req.CorrectAnswer)))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "completion failed"})
	}

	v := prompt.ParseCheck(text)
	return c.JSON([]string{v.Mistake, v.Strategy})
}

// handleHint returns a hint for the requested level. Provider failures fall
// back to the canned hint for the level.
func (s *Server) handleHint(c *fiber.Ctx) error {
	var req hintRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	if !req.HintLevel.Known() {
		return c.JSON(HintResponse{Hint: prompt.NoHint})
	}

	text := prompt.Hint(prompt.HintContext{
		Level:      req.HintLevel,
		Problem:    req.ProblemText,
		SubProblem: req.SubProblemText,
		Solution:   req.SubproblemSolution,
		UserCode:   req.UserCode,
		History:    req.ChatHistory,
	})

	hint, err := s.complete(c.UserContext(), routeHint, prompt.Single(s.config.ChatModel, text))
	if err != nil || hint == "" {
		hint = req.HintLevel.Fallback()
	}
	return c.JSON(HintResponse{Hint: hint})
}

// complete runs one bounded provider call and records it.
func (s *Server) complete(ctx context.Context, route string, req *llm.ChatRequest) (string, error) {
	req.MaxTokens = s.config.MaxTokens
	if s.config.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.CompletionTimeout)
		defer cancel()
	}

	s.logger.Debug("completion request",
		zap.String("route", route),
		zap.String("model", req.Model),
		zap.String("prompt", utils.Truncate(req.LastUserText(), previewLen)),
	)

	start := time.Now()
	text, err := s.provider.Complete(ctx, req)
	s.metrics.Completion(route, s.provider.Name(), time.Since(start), err)
	if err != nil {
		s.logger.Error("completion failed",
			zap.String("route", route),
			zap.String("provider", s.provider.Name()),
			zap.Error(err),
		)
		return "", err
	}

	s.logger.Debug("completion response",
		zap.String("route", route),
		zap.String("reply", utils.Truncate(text, previewLen)),
	)
	return text, nil
}
