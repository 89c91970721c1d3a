package recorder

import (
	"regexp"

	"github.com/MikeSquared-Agency/quill/internal/chatbase"
)

// emailPattern matches local-part@domain.tld, case-insensitive. The domain
// must contain a dot and end in a 2+ letter label, so bare hostnames and
// "user@localhost" never match.
var emailPattern = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)

// extractEmail resolves the contact email for a conversation. An explicit
// metadata email always wins. Otherwise message contents are scanned in
// order and the first match ends the scan.
func extractEmail(metadataEmail string, messages []chatbase.Message) (string, bool) {
	if metadataEmail != "" {
		return metadataEmail, true
	}
	for _, m := range messages {
		if match := emailPattern.FindString(m.Content); match != "" {
			return match, true
		}
	}
	return "", false
}
