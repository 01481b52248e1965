package api

import (
	"errors"
	"net/http"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/api/worker"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/eventstream"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider/echo"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/logger"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/prompt"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/inmemory"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/stream"
	testutils "github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/utils/test"
)

const feedbackBody = `{
	"message": {"messages": [{"role": "user", "content": "is it a loop?"}]},
	"student_mistake": "off by one",
	"strategy": "tracing",
	"correct_answer": "range(1, n+1)"
}`

var _ = Describe("Streaming handlers", func() {
	var (
		server *Server
		pub    *recordingPublisher
		pool   *worker.Pool
		config Config
	)

	newServer := func(p provider.Provider) {
		var err error
		pub = &recordingPublisher{}
		pool, err = worker.NewPool(&worker.Config{Publisher: pub, Logger: logger.Nop()})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(config, Deps{
			Provider: p,
			Storer:   inmemory.NewDriver(),
			Pool:     pool,
			Logger:   logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		config = testConfig()
	})

	AfterEach(func() {
		pool.Close()
	})

	Describe("POST /chat", func() {
		It("streams the echo reply in ten character chunks", func() {
			newServer(echo.New())

			resp := postJSON(server, "/chat", feedbackBody)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/event-stream"))

			events := readEvents(resp)
			Expect(events).NotTo(BeEmpty())
			for _, ev := range events[:len(events)-1] {
				Expect(utf8.RuneCountInString(ev["chunk"].(string))).To(Equal(10))
			}

			want := "Received input: " + prompt.Chat(prompt.Feedback{
				CorrectAnswer:  "range(1, n+1)",
				Strategy:       "tracing",
				StudentMistake: "off by one",
			})
			Expect(chunkText(events)).To(Equal(want))
		})

		It("sends the history ahead of the prompt", func() {
			mock := testutils.NewMockProvider("ok")
			newServer(mock)

			readEvents(postJSON(server, "/chat", feedbackBody))

			req := mock.LastRequest()
			Expect(req.Model).To(Equal("chat-model"))
			Expect(req.Messages).To(HaveLen(2))
			Expect(req.Messages[0].Content).To(Equal("is it a loop?"))
		})

		It("relays native deltas in order", func() {
			newServer(testutils.NewMockStreamer("Hel", "lo, ", "world"))

			events := readEvents(postJSON(server, "/chat", feedbackBody))
			Expect(events).To(Equal([]map[string]any{
				{"chunk": "Hel"}, {"chunk": "lo, "}, {"chunk": "world"},
			}))
		})

		It("splits even a streaming provider in split mode", func() {
			config.StreamMode = stream.ModeSplit
			mock := testutils.NewMockStreamer("ignored")
			mock.Reply = "0123456789abc"
			newServer(mock)

			events := readEvents(postJSON(server, "/chat", feedbackBody))
			Expect(events).To(Equal([]map[string]any{
				{"chunk": "0123456789"}, {"chunk": "abc"},
			}))
		})

		It("reports a provider failure in-band exactly once", func() {
			mock := testutils.NewMockProvider("")
			mock.Err = errors.New("boom")
			newServer(mock)

			resp := postJSON(server, "/chat", feedbackBody)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			events := readEvents(resp)
			Expect(events).To(HaveLen(1))
			Expect(events[0]["chunk"]).To(Equal("Error: mock completion: boom"))
		})

		It("reports a failing stream after the chunks already sent", func() {
			mock := testutils.NewMockStreamer("a", "b", "c")
			mock.FailAfter = 2
			newServer(mock)

			events := readEvents(postJSON(server, "/chat", feedbackBody))
			Expect(events).To(HaveLen(3))
			Expect(events[2]["chunk"]).To(HavePrefix("Error: "))
		})

		It("publishes a reply event when the stream ends", func() {
			newServer(echo.New())
			readEvents(postJSON(server, "/chat", feedbackBody))

			Eventually(func() []*eventstream.Event {
				return pub.ofType(eventstream.EventTypeReplyStreamed)
			}).Should(HaveLen(1))

			reply := pub.ofType(eventstream.EventTypeReplyStreamed)[0]
			Expect(reply.Source.Route).To(Equal("/chat"))
			Expect(reply.Source.Provider).To(Equal("echo"))
			Expect(reply.Reply.Outcome).To(Equal(eventstream.OutcomeCompleted))
			Expect(reply.Reply.Model).To(Equal("chat-model"))
		})

		It("rejects malformed JSON", func() {
			newServer(echo.New())

			resp := postJSON(server, "/chat", `{"message":`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			var body ErrorResponse
			readJSON(resp, &body)
			Expect(body.Error).NotTo(BeEmpty())
		})
	})

	Describe("POST /recap", func() {
		It("streams the recap prompt echo", func() {
			newServer(echo.New())

			events := readEvents(postJSON(server, "/recap", feedbackBody))
			Expect(chunkText(events)).To(HavePrefix("Received input: Recap the stuff they have done."))
		})
	})

	Describe("POST /api/ai", func() {
		BeforeEach(func() {
			newServer(echo.New())
		})

		It("sends a true verdict first for a long reply", func() {
			events := readEvents(postJSON(server, "/api/ai", `{
				"action": "validate",
				"chatHistory": [{"role": "user", "content": "for i in range(10)"}]
			}`))

			Expect(events[0]).To(Equal(map[string]any{"isCorrect": true}))
			Expect(chunkText(events[1:])).To(Equal("Great job! That's correct. "))
		})

		It("sends a false verdict first for a short reply", func() {
			events := readEvents(postJSON(server, "/api/ai", `{
				"action": "validate",
				"chatHistory": [{"role": "user", "content": "tenchars!!"}]
			}`))

			Expect(events[0]).To(Equal(map[string]any{"isCorrect": false}))
			Expect(events[1]).To(HaveKey("chunk"))
		})

		It("streams the initialize message word by word", func() {
			events := readEvents(postJSON(server, "/api/ai", `{
				"action": "initialize",
				"problem": "Sum",
				"subproblem": "Loop"
			}`))

			Expect(events).To(Equal([]map[string]any{
				{"chunk": "Let's "}, {"chunk": "begin. "}, {"chunk": "Sum "}, {"chunk": "Loop "},
			}))
		})

		It("answers unknown actions", func() {
			events := readEvents(postJSON(server, "/api/ai", `{"action": "dance"}`))
			Expect(chunkText(events)).To(Equal("I'm here to help you learn! "))
		})

		It("publishes the action with the reply event", func() {
			readEvents(postJSON(server, "/api/ai", `{"action": "next", "problem": "2"}`))

			Eventually(func() []*eventstream.Event {
				return pub.ofType(eventstream.EventTypeReplyStreamed)
			}).Should(HaveLen(1))
			Expect(pub.ofType(eventstream.EventTypeReplyStreamed)[0].Reply.Action).To(Equal("next"))
		})
	})
})
