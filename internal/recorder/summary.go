package recorder

import (
	"strings"

	"github.com/MikeSquared-Agency/quill/internal/chatbase"
)

// summaryLimit bounds the stored summary. Truncation is by rune, not word
// boundary, so a word may be cut mid-token.
const summaryLimit = 400

// summarize joins message contents with single spaces and truncates.
// Empty contents (including non-string payloads, which decode empty)
// contribute nothing, not even an extra separator.
func summarize(messages []chatbase.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		parts = append(parts, m.Content)
	}
	joined := strings.Join(parts, " ")

	runes := []rune(joined)
	if len(runes) <= summaryLimit {
		return joined
	}
	return string(runes[:summaryLimit])
}
