package provider_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm/provider"
)

var _ = Describe("New", func() {
	DescribeTable("builds each supported provider",
		func(kind string, streams bool) {
			p, err := provider.New(context.Background(), provider.Options{Type: kind, APIKey: "k"})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal(kind))

			_, ok := p.(provider.Streamer)
			Expect(ok).To(Equal(streams))
		},
		Entry("echo", provider.Echo, false),
		Entry("openai", provider.OpenAI, true),
		Entry("anthropic", provider.Anthropic, true),
		Entry("gemini", provider.Gemini, true),
	)

	It("rejects unknown providers", func() {
		_, err := provider.New(context.Background(), provider.Options{Type: "ollama"})
		Expect(err).To(MatchError(ContainSubstring("unknown provider type")))
	})
})
