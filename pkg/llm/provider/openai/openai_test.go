package openai_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider"
	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider/openai"
)

var _ = Describe("OpenAI Provider", func() {
	var (
		upstream *httptest.Server
		received map[string]any
		p        *openai.Provider
		req      *llm.ChatRequest
	)

	BeforeEach(func() {
		received = nil
		req = &llm.ChatRequest{
			Model:  "Qwen/Qwen2.5-Coder-7B-Instruct",
			System: "You are a patient tutor.",
			Messages: []llm.Message{
				llm.NewTextMessage(llm.RoleUser, "What is a loop?"),
			},
		}
	})

	AfterEach(func() {
		if upstream != nil {
			upstream.Close()
		}
	})

	start := func(handler http.HandlerFunc) {
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
			body, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(body, &received)).To(Succeed())
			handler(w, r)
		}))
		p = openai.New(openai.Options{BaseURL: upstream.URL + "/v1/"})
	}

	It("satisfies the Streamer interface", func() {
		var _ provider.Streamer = openai.New(openai.Options{})
		Expect(openai.New(openai.Options{}).Name()).To(Equal("openai"))
	})

	Describe("Complete", func() {
		It("returns the first choice and sends the system prompt first", func() {
			start(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"A loop repeats."},"finish_reason":"stop"}]}`)
			})

			out, err := p.Complete(ctx(), req)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("A loop repeats."))

			Expect(received["model"]).To(Equal("Qwen/Qwen2.5-Coder-7B-Instruct"))
			messages := received["messages"].([]any)
			Expect(messages).To(HaveLen(2))
			Expect(messages[0].(map[string]any)["role"]).To(Equal("system"))
			Expect(messages[1].(map[string]any)["content"]).To(Equal("What is a loop?"))
		})

		It("reports an empty choice list", func() {
			start(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`)
			})

			_, err := p.Complete(ctx(), req)
			Expect(err).To(MatchError(openai.ErrEmptyResponse))
		})

		It("surfaces upstream errors", func() {
			start(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error":{"message":"model overloaded","type":"server_error"}}`)
			})

			_, err := p.Complete(ctx(), req)
			Expect(err).To(MatchError(ContainSubstring("model overloaded")))
		})
	})

	Describe("Stream", func() {
		It("delivers each delta in order", func() {
			start(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				for _, part := range []string{"A ", "loop ", "repeats."} {
					fmt.Fprintf(w, "data: {\"id\":\"c\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
				}
				fmt.Fprint(w, "data: [DONE]\n\n")
			})

			var deltas []string
			err := p.Stream(ctx(), req, func(d string) error {
				deltas = append(deltas, d)
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(Equal([]string{"A ", "loop ", "repeats."}))
			Expect(received["stream"]).To(BeTrue())
		})

		It("stops when the callback fails", func() {
			start(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				for i := 0; i < 5; i++ {
					fmt.Fprintf(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"x%d\"}}]}\n\n", i)
				}
				fmt.Fprint(w, "data: [DONE]\n\n")
			})

			stop := fmt.Errorf("client gone")
			calls := 0
			err := p.Stream(ctx(), req, func(string) error {
				calls++
				return stop
			})
			Expect(err).To(MatchError(stop))
			Expect(calls).To(Equal(1))
		})
	})
})
