package api

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/eventstream"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/prompt"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/sse"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/stream"
)

const (
	routeChat  = "/chat"
	routeRecap = "/recap"
	routeTutor = "/api/ai"
)

// conversation is the {"messages": [...]} wrapper the frontend sends.
type conversation struct {
	Messages prompt.History `json:"messages"`
}

// feedbackRequest is the body of /chat and /recap.
type feedbackRequest struct {
	Message        conversation `json:"message"`
	StudentMistake string       `json:"student_mistake"`
	Strategy       string       `json:"strategy"`
	CorrectAnswer  string       `json:"correct_answer"`
}

func (r feedbackRequest) feedback() prompt.Feedback {
	return prompt.Feedback{
		CorrectAnswer:  r.CorrectAnswer,
		Strategy:       r.Strategy,
		StudentMistake: r.StudentMistake,
	}
}

// tutorRequest is the body of /api/ai.
type tutorRequest struct {
	Action      string         `json:"action"`
	Problem     *string        `json:"problem"`
	Subproblem  *string        `json:"subproblem"`
	Solution    *string        `json:"solution"`
	ChatHistory prompt.History `json:"chatHistory"`
}

// handleChat streams the next tutoring question.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	text := prompt.Chat(req.feedback())
	chat := prompt.Conversation(s.config.ChatModel, req.Message.Messages, text)
	return s.streamCompletion(c, routeChat, chat)
}

// handleRecap streams an end-of-problem summary.
func (s *Server) handleRecap(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	text := prompt.Recap(req.feedback())
	recap := prompt.Conversation(s.config.ChatModel, req.Message.Messages, text)
	return s.streamCompletion(c, routeRecap, recap)
}

// handleTutor streams the scripted tutor reply for an action. A validate
// reply starts with the verdict event.
func (s *Server) handleTutor(c *fiber.Ctx) error {
	var req tutorRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	reply := prompt.Tutor(prompt.TutorInput{
		Action:     req.Action,
		Problem:    req.Problem,
		Subproblem: req.Subproblem,
		History:    req.ChatHistory,
	})

	produce := stream.Text(reply.Text, s.config.wordPacing())
	if reply.Verdict != nil {
		produce = verdictFirst(*reply.Verdict, s.config.VerdictDelay, produce)
	}

	return s.streamReply(c, replyInfo{route: routeTutor, action: req.Action}, produce)
}

// verdictFirst publishes the verdict, waits delay and then runs produce.
func verdictFirst(correct bool, delay time.Duration, produce stream.ProduceFunc) stream.ProduceFunc {
	return func(ctx context.Context, emit stream.Emit) error {
		if err := emit(stream.Verdict(correct)); err != nil {
			return err
		}
		if err := stream.Sleep(ctx, delay); err != nil {
			return err
		}
		return produce(ctx, emit)
	}
}

// replyInfo labels a streamed reply in logs, metrics and events.
type replyInfo struct {
	route  string
	action string
	model  string
}

func (s *Server) streamCompletion(c *fiber.Ctx, route string, req *llm.ChatRequest) error {
	req.MaxTokens = s.config.MaxTokens
	produce := stream.WithTimeout(s.config.CompletionTimeout,
		stream.Auto(s.provider, req, s.config.StreamMode, s.config.chunkPacing()))

	timed := func(ctx context.Context, emit stream.Emit) error {
		start := time.Now()
		err := produce(ctx, emit)
		s.metrics.Completion(route, s.provider.Name(), time.Since(start), err)
		return err
	}
	return s.streamReply(c, replyInfo{route: route, model: req.Model}, timed)
}

// streamReply starts a producer for the reply and streams its events to the
// client as SSE.
//
// The body is an io.Pipe read by fasthttp, which flushes after every chunk.
// When the client goes away fasthttp closes the reader, the next write fails
// and the relay cancels the producer.
func (s *Server) streamReply(c *fiber.Ctx, info replyInfo, produce stream.ProduceFunc) error {
	session := stream.NewSession(s.ctx, s.config.Buffer)
	session.Start(produce)
	s.metrics.StreamStarted(info.route)

	s.logger.Debug("reply stream started",
		zap.String("session_id", session.ID()),
		zap.String("route", info.route),
		zap.String("action", info.action),
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	pr, pw := io.Pipe()
	go s.relay(session, pw, info, time.Now())

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (s *Server) relay(session *stream.Session, pw *io.PipeWriter, info replyInfo, started time.Time) {
	defer pw.Close()

	res, err := stream.Relay(s.ctx, sse.NewWriter(pw), session, s.config.relayOptions())
	elapsed := time.Since(started)

	fields := []zap.Field{
		zap.String("session_id", session.ID()),
		zap.String("route", info.route),
		zap.Int("events", res.Events),
		zap.Duration("duration", elapsed),
	}

	outcome := eventstream.OutcomeCompleted
	switch {
	case errors.Is(err, stream.ErrClientGone):
		outcome = eventstream.OutcomeClientGone
		s.logger.Debug("client disconnected", fields...)
	case errors.Is(err, stream.ErrProducerStalled):
		outcome = eventstream.OutcomeStalled
		s.logger.Warn("reply stream stalled", fields...)
	case err != nil:
		outcome = eventstream.OutcomeFailed
		s.logger.Warn("reply stream aborted", append(fields, zap.Error(err))...)
	case session.Err() != nil:
		outcome = eventstream.OutcomeFailed
		s.logger.Error("reply producer failed", append(fields, zap.Error(session.Err()))...)
	default:
		s.logger.Debug("reply stream completed", fields...)
	}

	s.metrics.StreamFinished(info.route, outcome, elapsed, res.Events)
	s.publish(eventstream.NewReplyStreamed(info.route, s.provider.Name(), eventstream.ReplyStreamed{
		StreamID:   session.ID(),
		Action:     info.action,
		Model:      info.model,
		Events:     res.Events,
		Bytes:      res.Bytes,
		DurationMs: elapsed.Milliseconds(),
		Outcome:    outcome,
	}))
}
