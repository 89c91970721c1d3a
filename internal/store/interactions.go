package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InteractionLog is one append-only row in interaction_logs. At most one of
// CustomerID and LeadID is set.
type InteractionLog struct {
	CustomerID           *uuid.UUID
	LeadID               *uuid.UUID
	InteractionType      string
	Summary              string
	CreatedAt            time.Time
	SourceConversationID string
}

// HasInteraction reports whether a conversation id has already been
// recorded. This check and InsertInteraction are deliberately separate
// statements with no enclosing transaction and no unique index backing
// them: two overlapping runs can both pass the check and double-insert.
// Hourly polling makes the overlap window negligible; callers wanting a
// hard guarantee must serialize runs themselves.
func (s *Store) HasInteraction(ctx context.Context, conversationID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM interaction_logs WHERE source_conversation_id = $1)`,
		conversationID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check interaction exists: %w", err)
	}
	return exists, nil
}

// InsertInteraction appends one interaction log row. Rows are never updated
// or deleted by quill.
func (s *Store) InsertInteraction(ctx context.Context, log InteractionLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interaction_logs (id, customer_id, lead_id, interaction_type, summary, created_at, source_conversation_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), log.CustomerID, log.LeadID, log.InteractionType, log.Summary, log.CreatedAt, log.SourceConversationID,
	)
	if err != nil {
		return fmt.Errorf("insert interaction log: %w", err)
	}
	return nil
}
