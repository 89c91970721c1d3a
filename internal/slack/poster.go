package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/quill/internal/recorder"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostRunSummary posts the outcome of a sync run to the ops channel.
func (p *Poster) PostRunSummary(ctx context.Context, report recorder.Report, window string) error {
	text := formatRunMessage(report, window)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted run summary to slack", "channel", p.channel)
	return nil
}

func formatRunMessage(report recorder.Report, window string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Chatbase sync* (%s)\n", window)
	fmt.Fprintf(&sb, "Processed %d conversations: %d recorded, %d skipped, %d failed.\n",
		report.Considered(), report.Recorded(), report.Skipped(), report.Failed())

	var failures []string
	for _, o := range report.Outcomes {
		if o.Status == recorder.StatusFailed {
			failures = append(failures, fmt.Sprintf("• %s — %s", o.ConversationID, o.Reason))
		}
	}
	if len(failures) > 0 {
		sb.WriteString("\n*Failures:*\n")
		sb.WriteString(strings.Join(failures, "\n"))
	}

	return sb.String()
}
