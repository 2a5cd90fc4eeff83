package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
	"rpucella.net/goes-catalog/internal/metadata"
)

// LocateOptions tune the previous/next searches.
type LocateOptions struct {
	// IncludeStartTime keeps the anchor acquisition in the result.
	IncludeStartTime bool
	// Strict requires the requested time to be an acquisition start and
	// checks scan mode and gaps over the selection and the anchor.
	Strict bool
	FindOptions
}

func distinctStarts(files []File) []time.Time {
	var out []time.Time
	for _, f := range files {
		if n := len(out); n == 0 || !out[n-1].Equal(f.StartTime) {
			out = append(out, f.StartTime)
		}
	}
	return out
}

// FindClosestStartTime returns the acquisition start nearest to t within
// t ± the sector search bound. Ties go to the earlier start.
func (f *Finder) FindClosestStartTime(ctx context.Context, d Descriptor, t time.Time, crit Criteria) (time.Time, error) {
	t = TruncateToMinute(t)
	bound := goes.SearchBound(d.Sector)
	win, err := NewWindow(t.Add(-bound), t.Add(bound), f.clock)
	if err != nil {
		return time.Time{}, err
	}
	files, err := f.find(ctx, d, win, crit)
	if err != nil {
		return time.Time{}, err
	}
	starts := distinctStarts(files)
	if len(starts) == 0 {
		return time.Time{}, &errdefs.NotFoundError{Msg: fmt.Sprintf("no %s data", d), Start: win.Start, End: win.End}
	}
	best := starts[0]
	for _, s := range starts[1:] {
		if absDuration(s.Sub(t)) < absDuration(best.Sub(t)) {
			best = s
		}
	}
	return best, nil
}

// FindLatestStartTime returns the most recent acquisition start in the last
// lookBack.
func (f *Finder) FindLatestStartTime(ctx context.Context, d Descriptor, lookBack time.Duration, crit Criteria) (time.Time, error) {
	if lookBack <= 0 {
		return time.Time{}, errdefs.Invalid("look_ahead_minutes", lookBack.String(), "must be positive")
	}
	now := f.clock.Now()
	win, err := NewWindow(now.Add(-lookBack), now, f.clock)
	if err != nil {
		return time.Time{}, err
	}
	files, err := f.find(ctx, d, win, crit)
	if err != nil {
		return time.Time{}, err
	}
	starts := distinctStarts(files)
	if len(starts) == 0 {
		return time.Time{}, &errdefs.NotFoundError{
			Msg:   fmt.Sprintf("no %s data in the last %s, increase the look-back", d, lookBack),
			Start: win.Start,
			End:   win.End,
		}
	}
	return starts[len(starts)-1], nil
}

// FindClosestFiles returns the files acquired at the start closest to t.
func (f *Finder) FindClosestFiles(ctx context.Context, d Descriptor, t time.Time, crit Criteria, opts FindOptions) ([]string, error) {
	closest, err := f.FindClosestStartTime(ctx, d, t, crit)
	if err != nil {
		return nil, err
	}
	files, err := f.at(ctx, d, closest, crit)
	if err != nil {
		return nil, err
	}
	return f.connect(Paths(files), opts.ConnectionType)
}

// FindLatestFiles returns the n most recent acquisitions, the latest
// included, grouped by start time.
func (f *Finder) FindLatestFiles(ctx context.Context, d Descriptor, n int, lookBack time.Duration, crit Criteria, opts LocateOptions) (Groups, error) {
	latest, err := f.FindLatestStartTime(ctx, d, lookBack, crit)
	if err != nil {
		return nil, err
	}
	opts.IncludeStartTime = true
	return f.FindPreviousFiles(ctx, d, latest, n, crit, opts)
}

// FindPreviousFiles returns the n acquisitions preceding the one closest to
// t, grouped by start time.
func (f *Finder) FindPreviousFiles(ctx context.Context, d Descriptor, t time.Time, n int, crit Criteria, opts LocateOptions) (Groups, error) {
	return f.neighbours(ctx, d, t, n, crit, opts, false)
}

// FindNextFiles returns the n acquisitions following the one closest to t,
// grouped by start time.
func (f *Finder) FindNextFiles(ctx context.Context, d Descriptor, t time.Time, n int, crit Criteria, opts LocateOptions) (Groups, error) {
	return f.neighbours(ctx, d, t, n, crit, opts, true)
}

// neighbours searches closest ∓ bound*(n+1). The multiplier is n+1 whether
// or not the anchor is kept.
func (f *Finder) neighbours(ctx context.Context, d Descriptor, t time.Time, n int, crit Criteria, opts LocateOptions, forward bool) (Groups, error) {
	if n < 1 {
		return nil, errdefs.Invalid("N", fmt.Sprint(n), "must be at least 1")
	}
	closest, err := f.FindClosestStartTime(ctx, d, t, crit)
	if err != nil {
		return nil, err
	}
	if opts.Strict && !closest.Equal(TruncateToMinute(t)) {
		return nil, errdefs.Invalid("start_time", formatTime(t),
			"no acquisition starts then, the closest is %s", formatTime(closest))
	}

	span := goes.SearchBound(d.Sector) * time.Duration(n+1)
	start, end := closest.Add(-span), closest
	if forward {
		start, end = closest, closest.Add(span)
	}
	win, err := NewWindow(start, end, f.clock)
	if err != nil {
		return nil, err
	}
	files, err := f.find(ctx, d, win, crit)
	if err != nil {
		return nil, err
	}

	var candidates []time.Time
	for _, s := range distinctStarts(files) {
		switch {
		case s.Equal(closest):
			if opts.IncludeStartTime {
				candidates = append(candidates, s)
			}
		case forward && s.After(closest), !forward && s.Before(closest):
			candidates = append(candidates, s)
		}
	}
	if len(candidates) < n {
		return nil, &errdefs.NotFoundError{
			Msg:   fmt.Sprintf("only %d of %d %s acquisitions available", len(candidates), n, d),
			Start: win.Start,
			End:   win.End,
		}
	}
	if forward {
		candidates = candidates[:n]
	} else {
		candidates = candidates[len(candidates)-n:]
	}

	wanted := map[time.Time]bool{}
	for _, s := range candidates {
		wanted[s] = true
	}
	var selected, checked []File
	for _, file := range files {
		if wanted[file.StartTime] {
			selected = append(selected, file)
			checked = append(checked, file)
		} else if file.StartTime.Equal(closest) {
			checked = append(checked, file)
		}
	}
	if opts.Strict {
		sortFiles(checked)
		if err := EnsureFixedScanMode(checked); err != nil {
			return nil, err
		}
		if err := EnsureNoGaps(checked); err != nil {
			return nil, err
		}
	}
	return f.connectGroups(groupFiles(selected, metadata.KeyStartTime), opts.ConnectionType)
}

// at returns the files starting exactly at start.
func (f *Finder) at(ctx context.Context, d Descriptor, start time.Time, crit Criteria) ([]File, error) {
	win, err := NewWindow(start, start, f.clock)
	if err != nil {
		return nil, err
	}
	files, err := f.find(ctx, d, win, crit)
	if err != nil {
		return nil, err
	}
	var out []File
	for _, file := range files {
		if file.StartTime.Equal(start) {
			out = append(out, file)
		}
	}
	return out, nil
}

// StartTimes returns the distinct start times of groups keyed by start
// time, in order.
func StartTimes(groups Groups) ([]time.Time, error) {
	out := make([]time.Time, 0, len(groups))
	for _, g := range groups {
		t, err := metadata.ParseKeyTime(g.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
