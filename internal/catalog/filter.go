package catalog

import (
	"strings"
	"time"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
	"rpucella.net/goes-catalog/internal/metadata"
)

// File is a listed path with the metadata parsed from its name.
type File struct {
	Path string
	metadata.Record
}

// Criteria restricts a query. Empty lists and zero times do not filter.
// All present criteria must hold.
type Criteria struct {
	Channels  []string
	ScanModes []string
	SceneAbbr []string
	Start     time.Time
	End       time.Time
}

// SplitList turns a comma-separated flag value into a list. It is the only
// place user input is coerced to a list.
func SplitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type set map[string]struct{}

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

type matcher struct {
	channels  set
	scanModes set
	sceneAbbr set
	start     time.Time
	end       time.Time
}

// normalize validates crit for sensor and resolves aliases into sets. A nil
// set means the criterion is absent.
func (crit Criteria) normalize(sensor goes.Sensor, sector goes.Sector) (matcher, error) {
	m := matcher{start: crit.Start, end: crit.End}
	if len(crit.Channels) > 0 {
		if sensor != "" && sensor != goes.ABI {
			return matcher{}, errdefs.Invalid("channels", strings.Join(crit.Channels, ","), "only ABI has channels")
		}
		m.channels = set{}
		for _, c := range crit.Channels {
			channel, err := goes.ParseChannel(c)
			if err != nil {
				return matcher{}, err
			}
			m.channels[channel] = struct{}{}
		}
	}
	if len(crit.ScanModes) > 0 {
		if sensor != "" && sensor != goes.ABI {
			return matcher{}, errdefs.Invalid("scan_modes", strings.Join(crit.ScanModes, ","), "only ABI has scan modes")
		}
		m.scanModes = set{}
		for _, s := range crit.ScanModes {
			mode, err := goes.ParseScanMode(s)
			if err != nil {
				return matcher{}, err
			}
			m.scanModes[string(mode)] = struct{}{}
		}
	}
	if len(crit.SceneAbbr) > 0 {
		if sensor != "" && sensor != goes.ABI {
			return matcher{}, errdefs.Invalid("scene_abbr", strings.Join(crit.SceneAbbr, ","), "sensor must be ABI")
		}
		if sector != "" && sector != goes.Mesoscale {
			return matcher{}, errdefs.Invalid("scene_abbr", strings.Join(crit.SceneAbbr, ","), "only with the mesoscale sector")
		}
		scenes := set{}
		for _, s := range crit.SceneAbbr {
			scene := strings.ToUpper(strings.TrimSpace(s))
			if scene != "M1" && scene != "M2" {
				return matcher{}, errdefs.Invalid("scene_abbr", s, "valid values are M1 and M2")
			}
			scenes[scene] = struct{}{}
		}
		// both domains is the same as no filter
		if len(scenes) == 1 {
			m.sceneAbbr = scenes
		}
	}
	if !m.start.IsZero() && !m.end.IsZero() && m.start.After(m.end) {
		return matcher{}, errdefs.Invalid("time window", "", "start_time %s after end_time %s", formatTime(m.start), formatTime(m.end))
	}
	return m, nil
}

// match applies every present criterion. Fields the filename does not carry
// (no channel in most L2 products) are not filtered on.
func (m matcher) match(rec metadata.Record) bool {
	if m.channels != nil && rec.Channel != "" && !m.channels.has(rec.Channel) {
		return false
	}
	if m.scanModes != nil && rec.ScanMode != "" && !m.scanModes.has(rec.ScanMode) {
		return false
	}
	if m.sceneAbbr != nil && rec.SceneAbbr != "" && !m.sceneAbbr.has(rec.SceneAbbr) {
		return false
	}
	// mesoscale records may have start == end after rounding
	if !m.start.IsZero() && rec.EndTime.Before(m.start) {
		return false
	}
	if !m.end.IsZero() && rec.StartTime.After(m.end) {
		return false
	}
	return true
}

// Filter keeps the files matching crit. Unmatched files are dropped
// silently. The error reports invalid criteria.
func Filter(files []File, crit Criteria) ([]File, error) {
	m, err := crit.normalize("", "")
	if err != nil {
		return nil, err
	}
	return m.filter(files), nil
}

func (m matcher) filter(files []File) []File {
	var out []File
	for _, f := range files {
		if m.match(f.Record) {
			out = append(out, f)
		}
	}
	return out
}

// Parse parses every path into a File.
func Parse(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		rec, err := metadata.ParsePath(p)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: p, Record: rec})
	}
	return files, nil
}

// Paths returns the path of each file.
func Paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
