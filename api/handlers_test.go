package api

import (
	"errors"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/logger"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/prompt"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage/inmemory"
	testutils "github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/utils/test"
)

var _ = Describe("Completion handlers", func() {
	var (
		server *Server
		mock   *testutils.MockProvider
	)

	BeforeEach(func() {
		mock = testutils.NewMockProvider("")

		var err error
		server, err = NewServer(testConfig(), Deps{
			Provider: mock,
			Storer:   inmemory.NewDriver(),
			Logger:   logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("POST /createSolution", func() {
		const body = `{"message": {"messages": {"concept": "loops", "problemDesc": "sum 1..n"}}}`

		It("separates the reasoning from ordered steps", func() {
			mock.Reply = "<think>add them up</think>\nStep 1: Read n\nStep 2: Loop to n\nStep 3: Print the sum"

			resp := postJSON(server, "/createSolution", body)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			defer resp.Body.Close()

			raw, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(MatchJSON(`{
				"model_reasoning": "add them up",
				"response": {"Step 1": "Read n", "Step 2": "Loop to n", "Step 3": "Print the sum"}
			}`))
			Expect(string(raw)).To(ContainSubstring(`"Step 1":"Read n","Step 2":"Loop to n","Step 3":"Print the sum"`))
		})

		It("asks the reasoning model with the solution prompt", func() {
			mock.Reply = "Step 1: go"
			postJSON(server, "/createSolution", body).Body.Close()

			req := mock.LastRequest()
			Expect(req.Model).To(Equal("reasoning-model"))
			Expect(req.LastUserText()).To(Equal(prompt.Solution("sum 1..n", "loops")))
		})

		It("returns 502 when the provider fails", func() {
			mock.Err = errors.New("unavailable")

			resp := postJSON(server, "/createSolution", body)
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))

			var e ErrorResponse
			readJSON(resp, &e)
			Expect(e.Error).To(Equal("completion failed"))
		})
	})

	Describe("POST /checkResponse", func() {
		const body = `{
			"message": {"messages": [{"role": "ai", "message": "What is 2+2?"}, {"role": "user", "content": "5"}]},
			"correct_answer": "4"
		}`

		It("returns the mistake and strategy", func() {
			mock.Reply = "MISTAKE: added wrong\nSTRATEGY: count on fingers"

			var out []string
			readJSON(postJSON(server, "/checkResponse", body), &out)
			Expect(out).To(Equal([]string{"added wrong", "count on fingers"}))
		})

		It("starts over when the learner is correct", func() {
			mock.Reply = "MISTAKE: CORRECT\nSTRATEGY: none"

			var out []string
			readJSON(postJSON(server, "/checkResponse", body), &out)
			Expect(out).To(Equal([]string{prompt.Correct, prompt.StartStrategy}))
		})

		It("sends the conversation with the check prompt last", func() {
			mock.Reply = "CORRECT"
			postJSON(server, "/checkResponse", body).Body.Close()

			req := mock.LastRequest()
			Expect(req.Messages).To(HaveLen(3))
			Expect(req.Messages[0].Role).To(Equal("assistant"))
			Expect(req.LastUserText()).To(Equal(prompt.Check("4")))
		})
	})

	Describe("POST /api/hint", func() {
		It("returns the provider hint", func() {
			mock.Reply = "Try summing inside the loop."

			var out HintResponse
			readJSON(postJSON(server, "/api/hint", `{"hint_level": "initial", "problem_text": "Sum"}`), &out)
			Expect(out.Hint).To(Equal("Try summing inside the loop."))
		})

		It("falls back to the canned hint when the provider fails", func() {
			mock.Err = errors.New("down")

			var out HintResponse
			readJSON(postJSON(server, "/api/hint", `{"hint_level": 2}`), &out)
			Expect(out.Hint).To(Equal(prompt.HintMoreHelp.Fallback()))
		})

		It("has no hint for unknown levels", func() {
			var out HintResponse
			readJSON(postJSON(server, "/api/hint", `{"hint_level": "default"}`), &out)
			Expect(out.Hint).To(Equal(prompt.NoHint))
			Expect(mock.Requests()).To(BeEmpty())
		})
	})
})
