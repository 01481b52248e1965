package stream

import "strings"

// Splitter partitions a complete reply into chunks.
type Splitter func(text string) []string

// FixedSize splits text into pieces of n characters (runes); the last piece
// may be shorter. Concatenating the pieces yields text.
func FixedSize(n int) Splitter {
	if n <= 0 {
		n = 1
	}

	return func(text string) []string {
		runes := []rune(text)
		pieces := make([]string, 0, (len(runes)+n-1)/n)
		for start := 0; start < len(runes); start += n {
			end := min(start+n, len(runes))
			pieces = append(pieces, string(runes[start:end]))
		}
		return pieces
	}
}

// Words splits text on whitespace and keeps one trailing space per word.
func Words() Splitter {
	return func(text string) []string {
		words := strings.Fields(text)
		for i, w := range words {
			words[i] = w + " "
		}
		return words
	}
}
