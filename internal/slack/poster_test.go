package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/quill/internal/recorder"
)

func testReport() recorder.Report {
	return recorder.Report{
		Outcomes: []recorder.Outcome{
			{ConversationID: "c1", Status: recorder.StatusRecorded, Email: "a@x.com"},
			{ConversationID: "c2", Status: recorder.StatusSkipped, Reason: "no email found"},
			{ConversationID: "c3", Status: recorder.StatusFailed, Reason: "insert: timeout"},
		},
	}
}

func TestPostRunSummary(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer xoxb-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	p := NewPoster("xoxb-test", "C123", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.apiURL = srv.URL

	if err := p.PostRunSummary(context.Background(), testReport(), "12:00 → 13:00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["channel"] != "C123" {
		t.Errorf("expected channel C123, got %v", payload["channel"])
	}
	text, _ := payload["text"].(string)
	if !strings.Contains(text, "Processed 3 conversations") {
		t.Errorf("expected processed count in message, got %q", text)
	}
}

func TestPostRunSummary_SlackError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer srv.Close()

	p := NewPoster("xoxb-test", "C123", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.apiURL = srv.URL

	err := p.PostRunSummary(context.Background(), testReport(), "12:00 → 13:00")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected slack error, got %v", err)
	}
}

func TestFormatRunMessage(t *testing.T) {
	text := formatRunMessage(testReport(), "12:00 → 13:00")

	if !strings.Contains(text, "1 recorded, 1 skipped, 1 failed") {
		t.Errorf("expected counts in message, got %q", text)
	}
	if !strings.Contains(text, "c3 — insert: timeout") {
		t.Errorf("expected failure detail, got %q", text)
	}
	if strings.Contains(text, "c2") {
		t.Errorf("skips should not be listed individually, got %q", text)
	}
}

func TestFormatRunMessage_NoFailures(t *testing.T) {
	report := recorder.Report{
		Outcomes: []recorder.Outcome{
			{ConversationID: "c1", Status: recorder.StatusRecorded},
		},
	}
	text := formatRunMessage(report, "w")
	if strings.Contains(text, "Failures") {
		t.Errorf("expected no failures section, got %q", text)
	}
}
