// Package openai implements a completion provider for OpenAI-compatible chat
// completion APIs, including self-hosted inference servers.
package openai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
)

// ErrEmptyResponse is returned when the API answers with no choices.
var ErrEmptyResponse = errors.New("openai: response has no choices")

// Options configures the client.
type Options struct {
	// BaseURL is the API root including the version, e.g. "http://host:8000/v1".
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type Provider struct {
	client *goopenai.Client
}

func New(opts Options) *Provider {
	key := opts.APIKey
	if key == "" {
		// Self-hosted servers accept any token but the header must be present.
		key = "dummy"
	}

	cfg := goopenai.DefaultConfig(key)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return &Provider{client: goopenai.NewClientWithConfig(cfg)}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Complete(ctx context.Context, req *llm.ChatRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.request(req))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Stream(ctx context.Context, req *llm.ChatRequest, onDelta func(string) error) error {
	r := p.request(req)
	r.Stream = true

	stream, err := p.client.CreateChatCompletionStream(ctx, r)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if len(resp.Choices) == 0 {
			continue
		}
		content := resp.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if err := onDelta(content); err != nil {
			return err
		}
	}
}

func (p *Provider) request(req *llm.ChatRequest) goopenai.ChatCompletionRequest {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := goopenai.ChatMessageRoleUser
		switch m.Role {
		case llm.RoleAssistant:
			role = goopenai.ChatMessageRoleAssistant
		case llm.RoleSystem:
			role = goopenai.ChatMessageRoleSystem
		}
		messages = append(messages, goopenai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return goopenai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
}
