package prompt

import (
	"fmt"
	"unicode/utf8"
)

// Tutor actions understood by /api/ai.
const (
	ActionInitialize = "initialize"
	ActionValidate   = "validate"
	ActionNext       = "next"
)

const (
	correctMessage   = "Great job! That's correct."
	incorrectMessage = "That's not quite right. Let me give you a hint: Think about the problem from a different angle."
	defaultMessage   = "I'm here to help you learn!"
)

// minCorrectLength is the number of characters a reply must exceed to be
// judged correct.
const minCorrectLength = 10

// TutorInput is the /api/ai payload. Problem and Subproblem are nil when the
// client omitted them.
type TutorInput struct {
	Action     string
	Problem    *string
	Subproblem *string
	History    History
}

// TutorReply is the scripted answer to a tutor action. Verdict is set only
// for validate and is sent before Text.
type TutorReply struct {
	Verdict *bool
	Text    string
}

// Tutor computes the reply for a tutor action.
func Tutor(in TutorInput) TutorReply {
	switch in.Action {
	case ActionInitialize:
		return TutorReply{
			Text: fmt.Sprintf("Let's begin. %s\n\n %s", or(in.Problem, "default"), or(in.Subproblem, "default")),
		}

	case ActionValidate:
		latest, ok := in.History.Latest()
		if !ok {
			latest = "default"
		}
		correct := utf8.RuneCountInString(latest) > minCorrectLength
		text := incorrectMessage
		if correct {
			text = correctMessage
		}
		return TutorReply{Verdict: &correct, Text: text}

	case ActionNext:
		return TutorReply{
			Text: fmt.Sprintf("Now let's tackle Problem %s:\n\n%s", or(in.Problem, ""), or(in.Subproblem, "")),
		}

	default:
		return TutorReply{Text: defaultMessage}
	}
}

func or(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
