package chatbase

import "encoding/json"

// Conversation is one chat session as returned by the Chatbase API.
// Conversations are fetched transiently once per run and never mutated.
type Conversation struct {
	ID       string    `json:"id"`
	Metadata Metadata  `json:"metadata"`
	Messages []Message `json:"messages"`
}

// Metadata carries the optional fields Chatbase attaches to a session.
// Only the visitor email is consumed.
type Metadata struct {
	Email string `json:"email"`
}

// Message is a single conversation turn. Only content is consumed.
type Message struct {
	Content string `json:"content"`
}

// UnmarshalJSON tolerates non-string or absent content — Chatbase mixes
// plain-text turns with structured tool payloads. Anything that is not a
// JSON string decodes to an empty content, not an error.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var s string
	if len(raw.Content) > 0 && json.Unmarshal(raw.Content, &s) == nil {
		m.Content = s
	}
	return nil
}
