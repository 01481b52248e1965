package prompt

import (
	"fmt"
	"strings"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/llm"
)

// TutorSystem is the system prompt sent with every tutoring request.
const TutorSystem = "You are a patient programming tutor. Guide the student towards the answer " +
	"with questions and hints. Do not hand over complete solutions unless asked for one."

// Feedback is the assessment context sent with /chat and /recap.
type Feedback struct {
	CorrectAnswer  string
	Strategy       string
	StudentMistake string
}

// Chat returns the prompt asking for the next tutoring question.
func Chat(f Feedback) string {
	return "Create a question based on the following information: " + f.CorrectAnswer +
		" and focus on the following concepts: " + f.Strategy +
		" and the student's mistake is: " + f.StudentMistake
}

// Recap returns the prompt asking for an end-of-problem summary.
func Recap(f Feedback) string {
	return "Recap the stuff they have done. The lessons they have learnt. " +
		"The mistakes they have made, and improvements suggestion" + f.CorrectAnswer +
		" and focus on the following concepts: " + f.Strategy +
		" and the student's mistake is: " + f.StudentMistake
}

// Solution returns the prompt asking for a step by step solution.
func Solution(problemDesc, concept string) string {
	return "Here are your requirements. You are to come up with step by step solution " +
		"to the following problem statement: " + problemDesc +
		" and focus on the following concepts: " + concept
}

// Check returns the prompt asking whether the learner's last reply is correct.
// The reply format is what ParseCheck reads.
func Check(correctAnswer string) string {
	return "Analyse the student's previous conversation. Is their last respond answering " +
		"the question correctly? Refer to the correct answer argument for the correct answer.\n" +
		"Correct answer: " + correctAnswer + "\n" +
		"Reply with exactly two lines:\n" +
		"MISTAKE: <why the student is wrong, or CORRECT>\n" +
		"STRATEGY: <the strategy to use next, or START if the student is correct>"
}

// Conversation appends text as the final user message of the history and wraps
// the result in a request for model.
func Conversation(model string, history History, text string) *llm.ChatRequest {
	msgs := history.Messages()
	msgs = append(msgs, llm.NewTextMessage(llm.RoleUser, text))
	return &llm.ChatRequest{
		Model:    model,
		System:   TutorSystem,
		Messages: msgs,
	}
}

// Single wraps a one-shot prompt in a request for model.
func Single(model, text string) *llm.ChatRequest {
	return &llm.ChatRequest{
		Model:    model,
		Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, text)},
	}
}

// HintContext carries what the learner is working on when they ask for a hint.
type HintContext struct {
	Level      HintLevel
	Problem    string
	SubProblem string
	Solution   string
	UserCode   string
	History    History
}

// Hint returns the prompt for a hint at the context's level.
func Hint(h HintContext) string {
	var sb strings.Builder

	switch h.Level {
	case HintInitial:
		sb.WriteString("Give the student a short first hint that helps them break the sub-problem down. Do not reveal the solution.\n")
	case HintMoreHelp:
		sb.WriteString("The student is still stuck. Give a more specific hint that points at what to change in their code. Do not reveal the full solution.\n")
	case HintSolution:
		sb.WriteString("Explain a possible solution approach as numbered steps, building on the student's attempt.\n")
	}

	fmt.Fprintf(&sb, "\nProblem: %s\n", h.Problem)
	fmt.Fprintf(&sb, "Sub-problem: %s\n", h.SubProblem)
	if h.Solution != "" {
		fmt.Fprintf(&sb, "Reference solution: %s\n", h.Solution)
	}
	if h.UserCode != "" {
		fmt.Fprintf(&sb, "Student code:\n%s\n", h.UserCode)
	}
	if len(h.History) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, t := range h.History {
			fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Content)
		}
	}

	return sb.String()
}
