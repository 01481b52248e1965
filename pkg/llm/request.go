package llm

// ChatRequest represents a provider-agnostic chat completion request.
// It is built once per HTTP request and not modified afterwards.
type ChatRequest struct {
	// Model name (e.g. "Qwen/Qwen2.5-Coder-7B-Instruct", "claude-3-5-haiku-latest")
	Model string `json:"model"`

	// System prompt. Providers that take it separately from the messages
	// (Anthropic, Gemini) lift it out.
	System string `json:"system,omitempty"`

	// Conversation messages, oldest first.
	Messages []Message `json:"messages"`

	MaxTokens int `json:"max_tokens,omitempty"`
}

// LastUserText returns the content of the most recent user message, or "".
func (r *ChatRequest) LastUserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}
