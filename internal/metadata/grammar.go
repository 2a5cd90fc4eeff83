package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rpucella.net/goes-catalog/internal/goes"
)

// Templates use named fields: {name:Ns} is a fixed-width string, {name:s}
// a variable string, {name:%Y%j%H%M%S%f} a timestamp and {name} an
// optional trailing string.
var templates = map[goes.Sensor]map[goes.ProductLevel]string{
	goes.ABI: {
		goes.L1b: "{system_environment:2s}_{sensor:3s}-{product_level:s}-{product:3s}{scene_abbr:s}-{scan_mode:2s}{channel:3s}_{platform:3s}_s{start_time:%Y%j%H%M%S%f}_e{end_time:%Y%j%H%M%S%f}_c{creation_time:%Y%j%H%M%S%f}.nc{nc_version}",
		// product and scene_abbr share one token, CMIP embeds channels in scan_mode
		goes.L2: "{system_environment:2s}_{sensor:3s}-{product_level:s}-{product_scene_abbr:s}-{scan_mode:s}_{platform:3s}_s{start_time:%Y%j%H%M%S%f}_e{end_time:%Y%j%H%M%S%f}_c{creation_time:%Y%j%H%M%S%f}.nc",
	},
	goes.GLM: {
		goes.L2: "{system_environment:s}_{sensor:3s}-{product_level:s}-{product:s}_{platform:3s}_s{start_time:%Y%j%H%M%S%f}_e{end_time:%Y%j%H%M%S%f}_c{creation_time:%Y%j%H%M%S%f}.nc",
	},
	goes.EXIS: {
		goes.L1b: "{system_environment:s}_{sensor:4s}-{product_level:s}-{product:s}_{platform:3s}_s{start_time:%Y%j%H%M%S%f}_e{end_time:%Y%j%H%M%S%f}_c{creation_time:%Y%j%H%M%S%f}.nc",
	},
	goes.SUVI: {
		goes.L1b: "{system_environment:s}_{sensor:4s}-{product_level:s}-{product:s}_{platform:3s}_s{start_time:%Y%j%H%M%S%f}_e{end_time:%Y%j%H%M%S%f}_c{creation_time:%Y%j%H%M%S%f}.nc",
	},
	goes.MAG: {
		goes.L1b: "{system_environment:s}_{sensor:3s}-{product_level:s}-{product:s}_{platform:3s}_s{start_time:%Y%j%H%M%S%f}_e{end_time:%Y%j%H%M%S%f}_c{creation_time:%Y%j%H%M%S%f}.nc",
	},
	goes.SEIS: {
		goes.L1b: "{system_environment:s}_{sensor:4s}-{product_level:s}-{product:s}_{platform:3s}_s{start_time:%Y%j%H%M%S%f}_e{end_time:%Y%j%H%M%S%f}_c{creation_time:%Y%j%H%M%S%f}.nc",
	},
}

const timeLayout = "%Y%j%H%M%S%f"

type fieldKind int

const (
	kindString fieldKind = iota
	kindTime
)

type field struct {
	name  string
	kind  fieldKind
	width int // 0 for variable width
}

type segment struct {
	literal string
	field   *field
}

// grammar is a compiled filename template.
type grammar struct {
	template string
	segments []segment
	re       *regexp.Regexp
	index    map[string]int
}

var templateField = regexp.MustCompile(`\{([a-z_]+)(?::([^}]*))?\}`)

func compile(template string) (*grammar, error) {
	g := &grammar{template: template, index: map[string]int{}}
	var pattern strings.Builder
	pattern.WriteString("^")
	last := 0
	group := 1
	for _, loc := range templateField.FindAllStringSubmatchIndex(template, -1) {
		if loc[0] > last {
			lit := template[last:loc[0]]
			g.segments = append(g.segments, segment{literal: lit})
			pattern.WriteString(regexp.QuoteMeta(lit))
		}
		name := template[loc[2]:loc[3]]
		verb := ""
		if loc[4] >= 0 {
			verb = template[loc[4]:loc[5]]
		}
		f := &field{name: name}
		switch {
		case verb == "":
			pattern.WriteString("(.*)")
		case verb == timeLayout:
			f.kind = kindTime
			pattern.WriteString(`(\d{13}\d{1,6}?)`)
		case verb == "s":
			pattern.WriteString("(.+?)")
		case strings.HasSuffix(verb, "s"):
			width, err := strconv.Atoi(strings.TrimSuffix(verb, "s"))
			if err != nil {
				return nil, fmt.Errorf("template %q: bad width %q", template, verb)
			}
			f.width = width
			fmt.Fprintf(&pattern, "(.{%d})", width)
		default:
			return nil, fmt.Errorf("template %q: unsupported format %q", template, verb)
		}
		g.segments = append(g.segments, segment{field: f})
		g.index[name] = group
		group++
		last = loc[1]
	}
	if last < len(template) {
		lit := template[last:]
		g.segments = append(g.segments, segment{literal: lit})
		pattern.WriteString(regexp.QuoteMeta(lit))
	}
	pattern.WriteString("$")
	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", template, err)
	}
	g.re = re
	return g, nil
}

// match returns the raw field values.
func (g *grammar) match(name string) (map[string]string, bool) {
	m := g.re.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}
	out := make(map[string]string, len(g.index))
	for field, i := range g.index {
		out[field] = m[i]
	}
	return out, true
}

// format renders field values back into a filename.
func (g *grammar) format(values map[string]string) (string, error) {
	var sb strings.Builder
	for _, seg := range g.segments {
		if seg.field == nil {
			sb.WriteString(seg.literal)
			continue
		}
		v := values[seg.field.name]
		if seg.field.width > 0 && len(v) != seg.field.width {
			return "", fmt.Errorf("field %s: %q is not %d characters", seg.field.name, v, seg.field.width)
		}
		sb.WriteString(v)
	}
	return sb.String(), nil
}

var grammars = func() map[goes.Sensor]map[goes.ProductLevel]*grammar {
	out := map[goes.Sensor]map[goes.ProductLevel]*grammar{}
	for sensor, levels := range templates {
		out[sensor] = map[goes.ProductLevel]*grammar{}
		for level, tpl := range levels {
			g, err := compile(tpl)
			if err != nil {
				panic(err)
			}
			out[sensor][level] = g
		}
	}
	return out
}()

func lookupGrammar(sensor goes.Sensor, level goes.ProductLevel) (*grammar, bool) {
	g, ok := grammars[sensor][level]
	return g, ok
}

// parseTimestamp decodes %Y%j%H%M%S%f. The fractional digits are a decimal
// fraction of a second ("4" is 400ms).
func parseTimestamp(s string) (time.Time, error) {
	if len(s) < 14 {
		return time.Time{}, fmt.Errorf("timestamp %q too short", s)
	}
	year, err1 := strconv.Atoi(s[0:4])
	doy, err2 := strconv.Atoi(s[4:7])
	hour, err3 := strconv.Atoi(s[7:9])
	minute, err4 := strconv.Atoi(s[9:11])
	second, err5 := strconv.Atoi(s[11:13])
	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
		}
	}
	frac := s[13:]
	if len(frac) > 6 {
		return time.Time{}, fmt.Errorf("timestamp %q: fraction too long", s)
	}
	micros, err := strconv.Atoi(frac + strings.Repeat("0", 6-len(frac)))
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	if doy < 1 || doy > 366 || hour > 23 || minute > 59 || second > 60 {
		return time.Time{}, fmt.Errorf("timestamp %q out of range", s)
	}
	t := time.Date(year, time.January, 1, hour, minute, second, micros*1000, time.UTC)
	t = t.AddDate(0, 0, doy-1)
	if t.Year() != year {
		return time.Time{}, fmt.Errorf("timestamp %q: day of year %d beyond %d", s, doy, year)
	}
	return t, nil
}

// formatTimestamp encodes t with a single tenth-of-second digit.
func formatTimestamp(t time.Time) string {
	t = t.UTC()
	tenths := t.Nanosecond() / int(100*time.Millisecond)
	return fmt.Sprintf("%04d%03d%02d%02d%02d%d", t.Year(), t.YearDay(), t.Hour(), t.Minute(), t.Second(), tenths)
}
