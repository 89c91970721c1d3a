package chatbase

import (
	"fmt"
	"time"
)

// Window is the half-open instant range [Start, End) a fetch covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// LastWindow returns the window covering the d duration ending now.
func LastWindow(d time.Duration) Window {
	now := time.Now().UTC()
	return Window{Start: now.Add(-d), End: now}
}

func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return fmt.Errorf("window end %s precedes start %s", w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

func (w Window) String() string {
	return w.Start.Format(time.RFC3339) + " → " + w.End.Format(time.RFC3339)
}
