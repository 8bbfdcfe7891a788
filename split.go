package discord

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the maximum number of characters Discord accepts in one message.
const MaxMessageLength = 2000

// SplitMessage splits text into chunks of at most maxLength characters.
// Chunks break at line boundaries; a single line longer than maxLength is cut into pieces.
// A non-positive maxLength leaves text whole.
func SplitMessage(text string, maxLength int) []string {
	if maxLength <= 0 || utf8.RuneCountInString(text) <= maxLength {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)

		if currentLen+lineLen+1 > maxLength {
			flush()

			runes := []rune(line)
			for len(runes) > maxLength {
				chunks = append(chunks, string(runes[:maxLength]))
				runes = runes[maxLength:]
			}
			line = string(runes)
			lineLen = len(runes)
		}

		current.WriteString(line)
		current.WriteString("\n")
		currentLen += lineLen + 1
	}
	flush()

	return chunks
}
