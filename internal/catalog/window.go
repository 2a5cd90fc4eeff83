package catalog

import (
	"fmt"
	"time"

	"rpucella.net/goes-catalog/internal/errdefs"
)

// Clock is the time source used to reject future windows and to resolve
// "latest" queries.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Window is a query interval at minute resolution.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow truncates start and end to the minute and checks that start
// precedes end and is not in the future. end may be in the future.
func NewWindow(start, end time.Time, clock Clock) (Window, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	w := Window{Start: TruncateToMinute(start), End: TruncateToMinute(end)}
	if w.Start.After(w.End) {
		return Window{}, errdefs.Invalid("time window", w.String(), "start_time must not be after end_time")
	}
	if w.Start.After(clock.Now()) {
		return Window{}, errdefs.Invalid("start_time", formatTime(w.Start), "must be in the past")
	}
	return w, nil
}

// Intersects reports whether [start, end] overlaps the window. Touching
// endpoints count.
func (w Window) Intersects(start, end time.Time) bool {
	return !end.Before(w.Start) && !start.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("%s/%s", formatTime(w.Start), formatTime(w.End))
}

// TruncateToMinute drops seconds and below and converts to UTC.
func TruncateToMinute(t time.Time) time.Time {
	return t.UTC().Truncate(time.Minute)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
