package catalog

import (
	"fmt"
	"sort"
	"time"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
)

// Names reported in ConsistencyError.Check.
const (
	CheckOperational   = "operational"
	CheckFixedScanMode = "fixed_scan_mode"
	CheckCoverage      = "coverage"
	CheckNoGaps        = "no_gaps"
	CheckBandCount     = "band_count"
	CheckRegular       = "regular_timesteps"
)

// EnsureAll runs the operational checks in order: availability, system
// environment, scan mode, coverage, gaps and band count.
func EnsureAll(files []File, what string, win Window) error {
	if err := EnsureAvailable(files, what, win); err != nil {
		return err
	}
	checks := []func([]File) error{
		EnsureOperational,
		EnsureFixedScanMode,
		func(files []File) error { return EnsureCoverage(files, win) },
		EnsureNoGaps,
		EnsureUniformBandCount,
	}
	for _, check := range checks {
		if err := check(files); err != nil {
			return err
		}
	}
	return nil
}

// EnsureOperational requires every file to come from the operational
// real-time environment.
func EnsureOperational(files []File) error {
	var bad []string
	for _, f := range files {
		if f.SystemEnvironment != goes.OperationalRealTime {
			bad = append(bad, f.Path)
		}
	}
	if len(bad) > 0 {
		return &errdefs.ConsistencyError{
			Check: CheckOperational,
			Msg:   "files do not come from the operational real-time environment",
			Paths: bad,
		}
	}
	return nil
}

// EnsureAvailable fails with a NotFoundError naming the window when files
// is empty.
func EnsureAvailable(files []File, what string, win Window) error {
	if len(files) > 0 {
		return nil
	}
	msg := "no data available"
	if what != "" {
		msg = fmt.Sprintf("no %s data available", what)
	}
	return &errdefs.NotFoundError{Msg: msg, Start: win.Start, End: win.End}
}

// EnsureFixedScanMode requires a single scan mode. Files without a scan
// mode are ignored.
func EnsureFixedScanMode(files []File) error {
	modes := map[string]bool{}
	for _, f := range files {
		if f.ScanMode != "" {
			modes[f.ScanMode] = true
		}
	}
	if len(modes) <= 1 {
		return nil
	}
	values := make([]string, 0, len(modes))
	for m := range modes {
		values = append(values, m)
	}
	sort.Strings(values)
	return &errdefs.ConsistencyError{
		Check:  CheckFixedScanMode,
		Msg:    "multiple scan modes",
		Values: values,
	}
}

// EnsureCoverage requires the files to span the whole window: the earliest
// start not after win.Start and the latest end not before win.End.
func EnsureCoverage(files []File, win Window) error {
	if len(files) == 0 {
		return &errdefs.ConsistencyError{
			Check:     CheckCoverage,
			Msg:       "time period not covered",
			Intervals: []errdefs.Interval{{Start: win.Start, End: win.End}},
		}
	}
	first, last := files[0].StartTime, files[0].EndTime
	for _, f := range files[1:] {
		if f.StartTime.Before(first) {
			first = f.StartTime
		}
		if f.EndTime.After(last) {
			last = f.EndTime
		}
	}
	var missing []errdefs.Interval
	if first.After(win.Start) {
		missing = append(missing, errdefs.Interval{Start: win.Start, End: first})
	}
	if last.Before(win.End) {
		missing = append(missing, errdefs.Interval{Start: last, End: win.End})
	}
	if len(missing) > 0 {
		return &errdefs.ConsistencyError{
			Check:     CheckCoverage,
			Msg:       "time period not covered",
			Intervals: missing,
		}
	}
	return nil
}

// timestep aggregates the files sharing a start time.
type timestep struct {
	start time.Time
	end   time.Time // latest end
	first File
	count int
}

func timesteps(files []File) []timestep {
	index := map[time.Time]int{}
	var steps []timestep
	for _, f := range files {
		i, ok := index[f.StartTime]
		if !ok {
			index[f.StartTime] = len(steps)
			steps = append(steps, timestep{start: f.StartTime, end: f.EndTime, first: f, count: 1})
			continue
		}
		steps[i].count++
		if f.EndTime.After(steps[i].end) {
			steps[i].end = f.EndTime
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].start.Before(steps[j].start) })
	return steps
}

// EnsureNoGaps checks that consecutive start times are no further apart
// than the acquisition cadence. ABI cadence comes from the sector and scan
// mode; other sensors use the smallest observed interval. Every missing
// interval is reported as (previous end, next start).
func EnsureNoGaps(files []File) error {
	steps := timesteps(files)
	if len(steps) < 2 {
		return nil
	}
	var observed time.Duration
	for i := 1; i < len(steps); i++ {
		if d := steps[i].start.Sub(steps[i-1].start); observed == 0 || d < observed {
			observed = d
		}
	}
	var missing []errdefs.Interval
	for i := 1; i < len(steps); i++ {
		prev, next := steps[i-1], steps[i]
		expected := observed
		if prev.first.Sensor == goes.ABI {
			if d, ok := goes.Cadence(prev.first.Sector, goes.ScanMode(prev.first.ScanMode)); ok {
				expected = d
			}
		}
		if next.start.Sub(prev.start) > expected {
			missing = append(missing, errdefs.Interval{Start: prev.end, End: next.start})
		}
	}
	if len(missing) > 0 {
		return &errdefs.ConsistencyError{
			Check:     CheckNoGaps,
			Msg:       "missing data",
			Intervals: missing,
		}
	}
	return nil
}

// EnsureUniformBandCount requires the same number of files at every start
// time. A band missing at every timestep goes undetected.
func EnsureUniformBandCount(files []File) error {
	steps := timesteps(files)
	expected := 0
	for _, s := range steps {
		if s.count > expected {
			expected = s.count
		}
	}
	var short []string
	for _, s := range steps {
		if s.count != expected {
			short = append(short, fmt.Sprintf("%s has %d files, expected %d", formatTime(s.start), s.count, expected))
		}
	}
	if len(short) > 0 {
		return &errdefs.ConsistencyError{
			Check:  CheckBandCount,
			Msg:    "non-uniform number of files per timestep",
			Values: short,
		}
	}
	return nil
}

// EnsureRegularTimesteps requires at least two start times separated by a
// single interval. A non-zero interval must also match.
func EnsureRegularTimesteps(files []File, interval time.Duration) error {
	steps := timesteps(files)
	switch len(steps) {
	case 0:
		return &errdefs.ConsistencyError{Check: CheckRegular, Msg: "no timesteps available"}
	case 1:
		return &errdefs.ConsistencyError{Check: CheckRegular, Msg: "only one timestep available"}
	}
	deltas := map[time.Duration]bool{}
	for i := 1; i < len(steps); i++ {
		deltas[steps[i].start.Sub(steps[i-1].start)] = true
	}
	if len(deltas) > 1 {
		ds := make([]time.Duration, 0, len(deltas))
		for d := range deltas {
			ds = append(ds, d)
		}
		sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
		values := make([]string, len(ds))
		for i, d := range ds {
			values[i] = d.String()
		}
		return &errdefs.ConsistencyError{Check: CheckRegular, Msg: "no unique interval between timesteps", Values: values}
	}
	if interval != 0 && !deltas[interval] {
		return &errdefs.ConsistencyError{Check: CheckRegular, Msg: fmt.Sprintf("interval between timesteps is not %s", interval)}
	}
	return nil
}
