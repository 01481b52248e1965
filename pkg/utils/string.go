package utils

// Truncate shortens s to at most maxLen characters and marks the cut with
// "...". It is used for log previews of prompts and replies.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
