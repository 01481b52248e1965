package prompt

import (
	"encoding/json"
	"strconv"
)

// HintLevel is the escalation step of a hint request.
type HintLevel string

const (
	HintInitial  HintLevel = "initial"
	HintMoreHelp HintLevel = "more_help"
	HintSolution HintLevel = "solution"
)

// NoHint is returned for levels that have no hint.
const NoHint = "No hint available."

var fallbackHints = map[HintLevel]string{
	HintInitial:  "Based on your code, first try to break this sub-problem down",
	HintMoreHelp: "Looking at your chat history, it seems you're on the right track. Have you considered using a different loop structure in your code?",
	HintSolution: "Here is a possible solution approach based on your attempt: 1. Initialize a variable. 2. Loop. 3. Calculate. 4. Return result.",
}

// Known reports whether the level has hints.
func (l HintLevel) Known() bool {
	_, ok := fallbackHints[l]
	return ok
}

// Fallback returns the canned hint for the level, or NoHint.
func (l HintLevel) Fallback() string {
	if hint, ok := fallbackHints[l]; ok {
		return hint
	}
	return NoHint
}

// UnmarshalJSON accepts the level name or the numeric level stored in the
// hint usage log (1, 2, 3).
func (l *HintLevel) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*l = HintLevel(name)
		return nil
	}

	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	switch n {
	case 1:
		*l = HintInitial
	case 2:
		*l = HintMoreHelp
	case 3:
		*l = HintSolution
	default:
		*l = HintLevel(strconv.Itoa(n))
	}
	return nil
}
