package chatbase

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWindow() Window {
	end := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return Window{Start: end.Add(-time.Hour), End: end}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("cb-test-key", "bot-42", srv.URL, 5*time.Second, testLogger())
}

func TestFetch_BareList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer cb-test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		w.Write([]byte(`[
			{"id": "c1", "metadata": {"email": "a@x.com"}, "messages": [{"content": "hi"}]},
			{"id": "c2", "messages": [{"content": "bye"}]}
		]`))
	})

	convos, err := client.Fetch(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(convos) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convos))
	}
	if convos[0].ID != "c1" || convos[1].ID != "c2" {
		t.Errorf("provider order not preserved: %q, %q", convos[0].ID, convos[1].ID)
	}
	if convos[0].Metadata.Email != "a@x.com" {
		t.Errorf("expected metadata email, got %q", convos[0].Metadata.Email)
	}
	if convos[1].Metadata.Email != "" {
		t.Errorf("expected empty email for c2, got %q", convos[1].Metadata.Email)
	}
}

func TestFetch_EnvelopedList(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"conversations field", `{"conversations": [{"id": "c1", "messages": []}]}`},
		{"data field", `{"data": [{"id": "c1", "messages": []}]}`},
		{"null conversations falls back to data", `{"conversations": null, "data": [{"id": "c1", "messages": []}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			convos, err := client.Fetch(context.Background(), testWindow())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(convos) != 1 || convos[0].ID != "c1" {
				t.Fatalf("expected one conversation c1, got %+v", convos)
			}
		})
	}
}

func TestFetch_QueryParams(t *testing.T) {
	win := testWindow()
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("bot_id"); got != "bot-42" {
			t.Errorf("expected bot_id bot-42, got %q", got)
		}
		if got := q.Get("start_date"); got != win.Start.Format(time.RFC3339) {
			t.Errorf("unexpected start_date %q", got)
		}
		if got := q.Get("end_date"); got != win.End.Format(time.RFC3339) {
			t.Errorf("unexpected end_date %q", got)
		}
		if got := q.Get("page"); got != "1" {
			t.Errorf("expected page 1, got %q", got)
		}
		if got := q.Get("page_size"); got != "50" {
			t.Errorf("expected page_size 50, got %q", got)
		}
		w.Write([]byte(`[]`))
	})

	if _, err := client.Fetch(context.Background(), win); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetch_SoftFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"non-2xx response",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "bad key"}`))
			},
		},
		{
			"malformed shape - scalar",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`"nope"`))
			},
		},
		{
			"malformed shape - envelope without list",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status": "ok"}`))
			},
		},
		{
			"malformed shape - list field not a sequence",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"conversations": "lots"}`))
			},
		},
		{
			"empty body",
			func(w http.ResponseWriter, r *http.Request) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			convos, err := client.Fetch(context.Background(), testWindow())
			if err != nil {
				t.Fatalf("soft failure must not surface an error, got %v", err)
			}
			if len(convos) != 0 {
				t.Errorf("expected empty result, got %d conversations", len(convos))
			}
		})
	}
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	client := NewClient("key", "bot", srv.URL, time.Second, testLogger())

	convos, err := client.Fetch(context.Background(), testWindow())
	if err != nil {
		t.Fatalf("network failure must not surface an error, got %v", err)
	}
	if len(convos) != 0 {
		t.Errorf("expected empty result, got %d", len(convos))
	}
}

func TestFetch_InvalidWindow(t *testing.T) {
	client := NewClient("key", "bot", "http://localhost:1", time.Second, testLogger())

	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	_, err := client.Fetch(context.Background(), Window{Start: start, End: start.Add(-time.Minute)})
	if err == nil {
		t.Fatal("expected error for window ending before it starts")
	}
}

func TestWindow_Validate(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	if err := (Window{Start: now, End: now}).Validate(); err != nil {
		t.Errorf("zero-length window should be valid, got %v", err)
	}
	if err := (Window{Start: now.Add(-time.Hour), End: now}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Window{Start: now, End: now.Add(-time.Second)}).Validate(); err == nil {
		t.Error("expected error when end precedes start")
	}
}

func TestLastWindow(t *testing.T) {
	w := LastWindow(time.Hour)
	if got := w.End.Sub(w.Start); got != time.Hour {
		t.Errorf("expected 1h span, got %s", got)
	}
	if err := w.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
