package catalog

import (
	"fmt"
	"time"
)

// HourDir is one YYYY/DOY/HH directory of the storage layout.
type HourDir struct {
	Year int
	DOY  int
	Hour int
}

func (h HourDir) String() string {
	return fmt.Sprintf("%04d/%03d/%02d", h.Year, h.DOY, h.Hour)
}

// Plan returns the hourly directories to list for [start, end]. Boundaries
// step by one hour from start while not after end plus one hour, so files
// crossing an hour boundary are found.
func Plan(start, end time.Time) []HourDir {
	start = start.UTC()
	limit := end.UTC().Add(time.Hour)
	var dirs []HourDir
	for t := start; !t.After(limit); t = t.Add(time.Hour) {
		dirs = append(dirs, HourDir{Year: t.Year(), DOY: t.YearDay(), Hour: t.Hour()})
	}
	return dirs
}

// roundingSlack is how far before the hour an acquisition may start and
// still have its start rounded to the hour.
const roundingSlack = 30 * time.Second

// searchDirs is Plan, preceded by the previous hour when a file stored
// there can have a start rounded to start.
func searchDirs(start, end time.Time) []HourDir {
	dirs := Plan(start, end)
	prev := start.UTC().Add(-roundingSlack)
	if prev.Hour() == start.UTC().Hour() {
		return dirs
	}
	return append([]HourDir{{Year: prev.Year(), DOY: prev.YearDay(), Hour: prev.Hour()}}, dirs...)
}
