package schedule

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidSpec(t *testing.T) {
	if _, err := New("not a cron spec", func() {}, testLogger()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestNew_ValidSpecs(t *testing.T) {
	for _, spec := range []string{"@hourly", "@every 1h", "*/15 * * * *"} {
		if _, err := New(spec, func() {}, testLogger()); err != nil {
			t.Errorf("expected %q to parse, got %v", spec, err)
		}
	}
}

func TestRunner_FiresOnSchedule(t *testing.T) {
	var runs atomic.Int32
	r, err := New("@every 10ms", func() { runs.Add(1) }, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.Start()
	defer r.Stop()

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunner_SkipsOverlappingRuns(t *testing.T) {
	block := make(chan struct{})
	var runs atomic.Int32
	r, err := New("@hourly", func() {
		runs.Add(1)
		<-block
	}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	go r.Run()

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		case <-time.After(time.Millisecond):
		}
	}

	// Second trigger while the first is blocked must be dropped.
	r.Run()
	if got := runs.Load(); got != 1 {
		t.Errorf("expected overlapping run to be skipped, got %d runs", got)
	}

	close(block)
}
