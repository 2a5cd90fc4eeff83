// Package metadata derives structured records from GOES-R filenames without
// opening the files.
package metadata

import (
	"fmt"
	"path"
	"strings"
	"time"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
)

// Record is the metadata encoded in one filename. Records are values and are
// recomputed on every query.
type Record struct {
	SystemEnvironment string
	Sensor            goes.Sensor
	ProductLevel      goes.ProductLevel
	Product           string
	Sector            goes.Sector // empty for sensors without sectors
	SceneAbbr         string      // F, C, M1, M2; empty for sensors without sectors
	ScanMode          string      // empty for sensors without scan modes
	Channel           string      // empty when the filename carries no channel
	Platform          string
	Satellite         goes.Satellite
	// StartTime and EndTime are rounded to the nearest minute. Mesoscale
	// acquisitions less than a minute apart share the same key.
	StartTime    time.Time
	EndTime      time.Time
	CreationTime time.Time
	NCVersion    string
}

// Parse decodes filename with the grammar registered for sensor and level.
func Parse(filename string, sensor goes.Sensor, level goes.ProductLevel) (Record, error) {
	g, ok := lookupGrammar(sensor, level)
	if !ok {
		return Record{}, &errdefs.ParseError{Name: filename, Msg: fmt.Sprintf("no grammar for %s %s", sensor, level)}
	}
	values, ok := g.match(filename)
	if !ok {
		return Record{}, &errdefs.ParseError{Name: filename, Msg: fmt.Sprintf("does not match %s %s grammar", sensor, level)}
	}
	if values["sensor"] != string(sensor) || values["product_level"] != string(level) {
		return Record{}, &errdefs.ParseError{Name: filename, Msg: fmt.Sprintf("sensor/level %s-%s, expected %s-%s",
			values["sensor"], values["product_level"], sensor, level)}
	}
	if !goes.ValidSystemEnvironment(values["system_environment"]) {
		return Record{}, &errdefs.ParseError{Name: filename, Msg: fmt.Sprintf("unknown system environment %q", values["system_environment"])}
	}

	rec := Record{
		SystemEnvironment: values["system_environment"],
		Sensor:            sensor,
		ProductLevel:      level,
		Product:           values["product"],
		SceneAbbr:         values["scene_abbr"],
		ScanMode:          values["scan_mode"],
		Channel:           values["channel"],
		Platform:          values["platform"],
		NCVersion:         values["nc_version"],
	}

	var err error
	if rec.StartTime, err = parseTimestamp(values["start_time"]); err != nil {
		return Record{}, &errdefs.ParseError{Name: filename, Msg: err.Error()}
	}
	if rec.EndTime, err = parseTimestamp(values["end_time"]); err != nil {
		return Record{}, &errdefs.ParseError{Name: filename, Msg: err.Error()}
	}
	if rec.CreationTime, err = parseTimestamp(values["creation_time"]); err != nil {
		return Record{}, &errdefs.ParseError{Name: filename, Msg: err.Error()}
	}
	rec.StartTime = RoundToMinute(rec.StartTime)
	rec.EndTime = RoundToMinute(rec.EndTime)

	if token, ok := values["product_scene_abbr"]; ok {
		product, scene, err := splitProductSceneAbbr(token)
		if err != nil {
			return Record{}, &errdefs.ParseError{Name: filename, Msg: err.Error()}
		}
		rec.Product = product
		rec.SceneAbbr = scene
		// e.g. CMIP M6C13: mode prefix, channel suffix
		if len(rec.ScanMode) > 2 {
			rec.Channel = rec.ScanMode[2:]
			rec.ScanMode = rec.ScanMode[:2]
		}
	}

	if sensor == goes.ABI {
		switch rec.SceneAbbr {
		case "F", "C":
			rec.Sector = goes.Sector(rec.SceneAbbr)
		case "M1", "M2":
			rec.Sector = goes.Mesoscale
		default:
			return Record{}, &errdefs.ParseError{Name: filename, Msg: fmt.Sprintf("unknown scene %q", rec.SceneAbbr)}
		}
	}

	sat, ok := goes.SatelliteFromPlatform(rec.Platform)
	if !ok {
		return Record{}, &errdefs.ParseError{Name: filename, Msg: fmt.Sprintf("unknown platform %q", rec.Platform)}
	}
	rec.Satellite = sat
	return rec, nil
}

// ParsePath infers sensor and level from the final path segment and parses it.
func ParsePath(p string) (Record, error) {
	name := path.Base(strings.ReplaceAll(p, "\\", "/"))
	sensor, err := InferSensor(name)
	if err != nil {
		return Record{}, err
	}
	level, err := InferProductLevel(name)
	if err != nil {
		return Record{}, err
	}
	return Parse(name, sensor, level)
}

// InferSensor finds the sensor token (_ABI-, _GLM-, ...) in a filename.
func InferSensor(name string) (goes.Sensor, error) {
	for _, s := range goes.AvailableSensors() {
		if strings.Contains(name, "_"+string(s)+"-") {
			return s, nil
		}
	}
	return "", &errdefs.ParseError{Name: name, Msg: "sensor could not be inferred"}
}

// InferProductLevel finds the -L1b- or -L2- token in a filename.
func InferProductLevel(name string) (goes.ProductLevel, error) {
	switch {
	case strings.Contains(name, "-L1b-"):
		return goes.L1b, nil
	case strings.Contains(name, "-L2-"):
		return goes.L2, nil
	}
	return "", &errdefs.ParseError{Name: name, Msg: "product level could not be inferred"}
}

// splitProductSceneAbbr splits an ABI L2 <product><scene_abbr> token. A
// trailing 1 or 2 marks a mesoscale domain (M1, M2); otherwise the last
// letter is F or C.
func splitProductSceneAbbr(token string) (string, string, error) {
	if len(token) < 2 {
		return "", "", fmt.Errorf("product token %q too short", token)
	}
	switch last := token[len(token)-1]; last {
	case '1', '2':
		if len(token) < 3 || token[len(token)-2] != 'M' {
			return "", "", fmt.Errorf("product token %q: bad mesoscale scene", token)
		}
		return token[:len(token)-2], token[len(token)-2:], nil
	case 'F', 'C':
		return token[:len(token)-1], token[len(token)-1:], nil
	}
	return "", "", fmt.Errorf("product token %q: no scene abbreviation", token)
}

// RoundToMinute rounds t to the nearest minute, half a minute rounding up.
func RoundToMinute(t time.Time) time.Time {
	return t.Add(30 * time.Second).Truncate(time.Minute)
}

// Render builds the filename of a record. It is the inverse of Parse for
// records whose times carry at most tenth-of-second precision.
func Render(rec Record) (string, error) {
	g, ok := lookupGrammar(rec.Sensor, rec.ProductLevel)
	if !ok {
		return "", errdefs.Invalid("record", "", "no grammar for %s %s", rec.Sensor, rec.ProductLevel)
	}
	values := map[string]string{
		"system_environment": rec.SystemEnvironment,
		"sensor":             string(rec.Sensor),
		"product_level":      string(rec.ProductLevel),
		"product":            rec.Product,
		"scene_abbr":         rec.SceneAbbr,
		"scan_mode":          rec.ScanMode,
		"channel":            rec.Channel,
		"platform":           rec.Platform,
		"start_time":         formatTimestamp(rec.StartTime),
		"end_time":           formatTimestamp(rec.EndTime),
		"creation_time":      formatTimestamp(rec.CreationTime),
		"nc_version":         rec.NCVersion,
	}
	if _, ok := g.index["product_scene_abbr"]; ok {
		values["product_scene_abbr"] = rec.Product + rec.SceneAbbr
		values["scan_mode"] = rec.ScanMode + rec.Channel
	}
	name, err := g.format(values)
	if err != nil {
		return "", errdefs.Invalid("record", "", "%v", err)
	}
	return name, nil
}
