package prompt

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

const thinkClose = "</think>"

// SplitReasoning separates a reasoning model's <think> section from its
// answer. Text without a closing tag is all answer.
func SplitReasoning(text string) (reasoning, answer string) {
	before, after, found := strings.Cut(text, thinkClose)
	if !found {
		return "", strings.TrimSpace(text)
	}

	reasoning = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(before), "<think>"))
	return reasoning, strings.TrimSpace(after)
}

// Step is one labelled step of a solution.
type Step struct {
	Label string
	Text  string
}

// Steps is an ordered solution. It encodes as a JSON object whose keys keep
// the step order.
type Steps []Step

func (s Steps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, step := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(step.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(step.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lookup returns the text of the step with the given label.
func (s Steps) Lookup(label string) (string, bool) {
	for _, step := range s {
		if step.Label == label {
			return step.Text, true
		}
	}
	return "", false
}

// stepLine matches "Step 3: ...", "**Step 3:** ...", "- Step 3. ...".
var stepLine = regexp.MustCompile(`(?i)^[\s*#>\-]*step\s+(\d+)\s*\**\s*[:.)\-]\s*\**\s*(.*)$`)

// ParseSteps reads "Step N:" lines out of a solution. Lines between two step
// headers belong to the earlier step. If no step header is present the whole
// answer becomes "Step 1".
func ParseSteps(answer string) Steps {
	var steps Steps
	for _, line := range strings.Split(answer, "\n") {
		if m := stepLine.FindStringSubmatch(line); m != nil {
			steps = append(steps, Step{Label: "Step " + m[1], Text: strings.TrimSpace(m[2])})
			continue
		}
		if len(steps) == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		last := &steps[len(steps)-1]
		last.Text = strings.TrimSpace(last.Text + "\n" + strings.TrimSpace(line))
	}

	if len(steps) == 0 {
		return Steps{{Label: "Step 1", Text: strings.TrimSpace(answer)}}
	}
	return steps
}

const (
	// Correct is the mistake value for a correct reply.
	Correct = "CORRECT"
	// StartStrategy is the strategy used when there is nothing to remediate.
	StartStrategy = "START"
)

// Verdict is the parsed answer to a Check prompt.
type Verdict struct {
	Mistake  string
	Strategy string
}

// ParseCheck reads MISTAKE: and STRATEGY: lines from a check reply. Without a
// MISTAKE line the first non-empty line is the mistake. A correct reply, or
// one without a strategy, gets the START strategy.
func ParseCheck(text string) Verdict {
	_, answer := SplitReasoning(text)

	var v Verdict
	var first string
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if rest, ok := cutPrefixFold(line, "MISTAKE:"); ok && v.Mistake == "" {
			v.Mistake = rest
			continue
		}
		if rest, ok := cutPrefixFold(line, "STRATEGY:"); ok && v.Strategy == "" {
			v.Strategy = rest
		}
	}

	if v.Mistake == "" {
		v.Mistake = first
	}
	if strings.EqualFold(strings.Trim(v.Mistake, ".! "), Correct) {
		v.Mistake = Correct
		v.Strategy = StartStrategy
	}
	if v.Strategy == "" {
		v.Strategy = StartStrategy
	}
	return v
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s[len(prefix):]), "*")), true
}
