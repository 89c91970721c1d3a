package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/MikeSquared-Agency/quill/internal/chatbase"
	"github.com/MikeSquared-Agency/quill/internal/store"
)

// PersonDirectory resolves an email to a known person. Satisfied by
// *store.Store.
type PersonDirectory interface {
	CustomerIDByEmail(ctx context.Context, email string) (uuid.UUID, bool, error)
	LeadIDByEmail(ctx context.Context, email string) (uuid.UUID, bool, error)
}

// InteractionStore is the append-only interaction history. Satisfied by
// *store.Store.
type InteractionStore interface {
	HasInteraction(ctx context.Context, conversationID string) (bool, error)
	InsertInteraction(ctx context.Context, log store.InteractionLog) error
}

type Status string

const (
	StatusRecorded Status = "recorded"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Outcome is the result of processing one conversation.
type Outcome struct {
	ConversationID string `json:"conversation_id"`
	Status         Status `json:"status"`
	Reason         string `json:"reason,omitempty"`
	Email          string `json:"email,omitempty"`
}

// Report is the inspectable result of one run. Considered counts every
// conversation handed to Record, not just the ones that produced a row.
type Report struct {
	Outcomes   []Outcome `json:"outcomes"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (r Report) Considered() int { return len(r.Outcomes) }

func (r Report) Recorded() int { return r.count(StatusRecorded) }
func (r Report) Skipped() int  { return r.count(StatusSkipped) }
func (r Report) Failed() int   { return r.count(StatusFailed) }

func (r Report) count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Recorder turns fetched conversations into interaction log rows.
type Recorder struct {
	people          PersonDirectory
	logs            InteractionStore
	interactionType string
	now             func() time.Time
	logger          *slog.Logger
}

func New(people PersonDirectory, logs InteractionStore, interactionType string, logger *slog.Logger) *Recorder {
	return &Recorder{
		people:          people,
		logs:            logs,
		interactionType: interactionType,
		now:             time.Now,
		logger:          logger,
	}
}

// Record processes conversations one at a time, in order. Every
// conversation is isolated: a data error, store failure, or panic in one
// never aborts the rest of the batch.
func (r *Recorder) Record(ctx context.Context, convos []chatbase.Conversation) Report {
	report := Report{StartedAt: r.now().UTC()}

	for _, convo := range convos {
		outcome := r.processOne(ctx, convo)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.FinishedAt = r.now().UTC()
	r.logger.Info("processed conversations",
		"considered", report.Considered(),
		"recorded", report.Recorded(),
		"skipped", report.Skipped(),
		"failed", report.Failed(),
	)
	return report
}

func (r *Recorder) processOne(ctx context.Context, convo chatbase.Conversation) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("conversation processing panicked",
				"conversation_id", convo.ID,
				"panic", p,
			)
			out = Outcome{ConversationID: convo.ID, Status: StatusFailed, Reason: fmt.Sprintf("panic: %v", p)}
		}
	}()

	if len(convo.Messages) == 0 {
		return r.skip(convo.ID, "no messages", "")
	}

	seen, err := r.logs.HasInteraction(ctx, convo.ID)
	if err != nil {
		return r.fail(convo.ID, fmt.Sprintf("existence check: %v", err), "")
	}
	if seen {
		return r.skip(convo.ID, "already recorded", "")
	}

	email, ok := extractEmail(convo.Metadata.Email, convo.Messages)
	if !ok {
		return r.skip(convo.ID, "no email found", "")
	}

	customerID, leadID, err := r.resolveIdentity(ctx, email)
	if err != nil {
		return r.fail(convo.ID, fmt.Sprintf("identity lookup: %v", err), email)
	}
	if customerID == nil && leadID == nil {
		return r.skip(convo.ID, "no matching customer or lead", email)
	}

	row := store.InteractionLog{
		CustomerID:           customerID,
		LeadID:               leadID,
		InteractionType:      r.interactionType,
		Summary:              summarize(convo.Messages),
		CreatedAt:            r.now().UTC(),
		SourceConversationID: convo.ID,
	}
	if err := r.logs.InsertInteraction(ctx, row); err != nil {
		r.logger.Error("interaction insert failed",
			"conversation_id", convo.ID,
			"email", email,
			"error", err,
		)
		return Outcome{ConversationID: convo.ID, Status: StatusFailed, Reason: fmt.Sprintf("insert: %v", err), Email: email}
	}

	r.logger.Info("interaction recorded", "conversation_id", convo.ID, "email", email)
	return Outcome{ConversationID: convo.ID, Status: StatusRecorded, Email: email}
}

// resolveIdentity finds the person behind an email. Customers win: when a
// customer matches, the lead store is not queried at all.
func (r *Recorder) resolveIdentity(ctx context.Context, email string) (*uuid.UUID, *uuid.UUID, error) {
	if id, found, err := r.people.CustomerIDByEmail(ctx, email); err != nil {
		return nil, nil, fmt.Errorf("customer lookup: %w", err)
	} else if found {
		return &id, nil, nil
	}

	if id, found, err := r.people.LeadIDByEmail(ctx, email); err != nil {
		return nil, nil, fmt.Errorf("lead lookup: %w", err)
	} else if found {
		return nil, &id, nil
	}

	return nil, nil, nil
}

func (r *Recorder) skip(conversationID, reason, email string) Outcome {
	r.logger.Info("skipping conversation", "conversation_id", conversationID, "reason", reason)
	return Outcome{ConversationID: conversationID, Status: StatusSkipped, Reason: reason, Email: email}
}

func (r *Recorder) fail(conversationID, reason, email string) Outcome {
	r.logger.Error("conversation processing failed", "conversation_id", conversationID, "reason", reason)
	return Outcome{ConversationID: conversationID, Status: StatusFailed, Reason: reason, Email: email}
}
