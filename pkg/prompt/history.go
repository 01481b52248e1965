// Package prompt builds the completion prompts for the tutoring routes and
// parses structure back out of model replies.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
)

// Turn is one entry of a learner conversation as sent by the frontend.
// Both {role, content} and the stored chat log shape {role, message} decode.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (t *Turn) UnmarshalJSON(b []byte) error {
	var raw struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	t.Role = normalizeRole(raw.Role)
	t.Content = raw.Content
	if t.Content == "" {
		t.Content = raw.Message
	}
	return nil
}

func normalizeRole(role string) string {
	switch role {
	case "ai", "assistant", "model":
		return llm.RoleAssistant
	case "system":
		return llm.RoleSystem
	default:
		return llm.RoleUser
	}
}

// History is a learner conversation, oldest first. It decodes from a JSON
// array of turns, a bare string (a single user turn) or null.
type History []Turn

func (h *History) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*h = nil
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*h = nil
			return nil
		}
		*h = History{{Role: llm.RoleUser, Content: s}}
		return nil
	}

	var turns []Turn
	if err := json.Unmarshal(b, &turns); err != nil {
		return fmt.Errorf("conversation must be a string or a list of messages: %w", err)
	}
	*h = turns
	return nil
}

// Latest returns the content of the last turn and whether there was one.
func (h History) Latest() (string, bool) {
	if len(h) == 0 {
		return "", false
	}
	return h[len(h)-1].Content, true
}

// Messages converts the conversation into provider messages.
func (h History) Messages() []llm.Message {
	msgs := make([]llm.Message, 0, len(h))
	for _, t := range h {
		msgs = append(msgs, llm.NewTextMessage(t.Role, t.Content))
	}
	return msgs
}
