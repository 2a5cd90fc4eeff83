package metadata

import (
	"time"

	"rpucella.net/goes-catalog/internal/errdefs"
)

// Key names a Record field usable for grouping.
type Key string

const (
	KeySystemEnvironment Key = "system_environment"
	KeySensor            Key = "sensor"
	KeyProductLevel      Key = "product_level"
	KeyProduct           Key = "product"
	KeySector            Key = "sector"
	KeySceneAbbr         Key = "scene_abbr"
	KeyScanMode          Key = "scan_mode"
	KeyChannel           Key = "channel"
	KeyPlatform          Key = "platform_shortname"
	KeySatellite         Key = "satellite"
	KeyStartTime         Key = "start_time"
	KeyEndTime           Key = "end_time"
)

var keys = []Key{
	KeySystemEnvironment, KeySensor, KeyProductLevel, KeyProduct, KeySector,
	KeySceneAbbr, KeyScanMode, KeyChannel, KeyPlatform, KeySatellite,
	KeyStartTime, KeyEndTime,
}

// TimeFormat is the layout of time-valued keys. It sorts lexicographically
// in chronological order.
const TimeFormat = "2006-01-02T15:04:05Z"

func AvailableKeys() []Key {
	return append([]Key(nil), keys...)
}

func ParseKey(name string) (Key, error) {
	for _, k := range keys {
		if string(k) == name {
			return k, nil
		}
	}
	return "", errdefs.Invalid("group key", name, "valid keys are %v", keys)
}

// IsTime reports whether the key holds a timestamp.
func (k Key) IsTime() bool {
	return k == KeyStartTime || k == KeyEndTime
}

// Value returns the key of rec as a string. Time keys use TimeFormat.
func (rec Record) Value(k Key) string {
	switch k {
	case KeySystemEnvironment:
		return rec.SystemEnvironment
	case KeySensor:
		return string(rec.Sensor)
	case KeyProductLevel:
		return string(rec.ProductLevel)
	case KeyProduct:
		return rec.Product
	case KeySector:
		return string(rec.Sector)
	case KeySceneAbbr:
		return rec.SceneAbbr
	case KeyScanMode:
		return rec.ScanMode
	case KeyChannel:
		return rec.Channel
	case KeyPlatform:
		return rec.Platform
	case KeySatellite:
		return string(rec.Satellite)
	case KeyStartTime:
		return rec.StartTime.UTC().Format(TimeFormat)
	case KeyEndTime:
		return rec.EndTime.UTC().Format(TimeFormat)
	}
	return ""
}

// Values parses every path and returns its value for key.
func Values(paths []string, k Key) ([]string, error) {
	if _, err := ParseKey(string(k)); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rec, err := ParsePath(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Value(k))
	}
	return out, nil
}

// ParseKeyTime decodes the value of a time key.
func ParseKeyTime(value string) (time.Time, error) {
	return time.Parse(TimeFormat, value)
}
