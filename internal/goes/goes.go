// Package goes holds the static GOES-R registries: satellites, sensors,
// products, sectors, channels, scan modes and acquisition cadences.
//
// All tables are built once at package initialisation and never mutated.
// Accessors return copies.
package goes

import (
	"sort"
	"strings"

	"rpucella.net/goes-catalog/internal/errdefs"
)

type Satellite string

const (
	GOES16 Satellite = "goes-16"
	GOES17 Satellite = "goes-17"
	GOES18 Satellite = "goes-18"
	GOES19 Satellite = "goes-19"
)

var satelliteAliases = map[Satellite][]string{
	GOES16: {"16", "G16", "GOES-16", "GOES16"},
	GOES17: {"17", "G17", "GOES-17", "GOES17"},
	GOES18: {"18", "G18", "GOES-18", "GOES18"},
	GOES19: {"19", "G19", "GOES-19", "GOES19"},
}

var platforms = map[string]Satellite{
	"G16": GOES16,
	"G17": GOES17,
	"G18": GOES18,
	"G19": GOES19,
}

// Number returns the two-digit satellite number ("16" for goes-16).
func (s Satellite) Number() string {
	return strings.TrimPrefix(string(s), "goes-")
}

// Platform returns the platform short name used in filenames ("G16").
func (s Satellite) Platform() string {
	return "G" + s.Number()
}

// ParseSatellite resolves a satellite name or alias.
func ParseSatellite(name string) (Satellite, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for sat, aliases := range satelliteAliases {
		for _, alias := range aliases {
			if upper == alias {
				return sat, nil
			}
		}
	}
	return "", errdefs.Invalid("satellite", name, "available satellites: %v", AvailableSatellites())
}

// SatelliteFromPlatform maps a filename platform token (G16) to a satellite.
func SatelliteFromPlatform(platform string) (Satellite, bool) {
	sat, ok := platforms[platform]
	return sat, ok
}

func AvailableSatellites() []Satellite {
	out := make([]Satellite, 0, len(satelliteAliases))
	for sat := range satelliteAliases {
		out = append(out, sat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type Sensor string

const (
	ABI  Sensor = "ABI"
	GLM  Sensor = "GLM"
	SUVI Sensor = "SUVI"
	EXIS Sensor = "EXIS"
	SEIS Sensor = "SEIS"
	MAG  Sensor = "MAG"
)

var sensors = []Sensor{ABI, GLM, SUVI, EXIS, SEIS, MAG}

func ParseSensor(name string) (Sensor, error) {
	upper := Sensor(strings.ToUpper(strings.TrimSpace(name)))
	for _, s := range sensors {
		if s == upper {
			return s, nil
		}
	}
	return "", errdefs.Invalid("sensor", name, "available sensors: %v", sensors)
}

func AvailableSensors() []Sensor {
	return append([]Sensor(nil), sensors...)
}

type ProductLevel string

const (
	L1b ProductLevel = "L1b"
	L2  ProductLevel = "L2"
)

// ParseProductLevel accepts any letter case ("l1b", "L1B").
func ParseProductLevel(name string) (ProductLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "L1B":
		return L1b, nil
	case "L2":
		return L2, nil
	}
	return "", errdefs.Invalid("product_level", name, "available product levels are [L1b L2]")
}

// AvailableProductLevels returns the levels of the given sensors, or all
// levels when none are given.
func AvailableProductLevels(sensors ...Sensor) []ProductLevel {
	if len(sensors) == 0 {
		return []ProductLevel{L1b, L2}
	}
	seen := map[ProductLevel]bool{}
	for _, s := range sensors {
		for level := range products[s] {
			seen[level] = true
		}
	}
	var out []ProductLevel
	for _, level := range []ProductLevel{L1b, L2} {
		if seen[level] {
			out = append(out, level)
		}
	}
	return out
}

type Sector string

const (
	FullDisk  Sector = "F"
	CONUS     Sector = "C"
	Mesoscale Sector = "M"
)

var sectorAliases = map[Sector][]string{
	FullDisk:  {"FULL", "FULLDISK", "FULL DISK", "F", "FLDK"},
	CONUS:     {"CONUS", "PACUS", "C", "P"},
	Mesoscale: {"MESOSCALE", "M1", "M2", "M"},
}

func ParseSector(name string) (Sector, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for sector, aliases := range sectorAliases {
		for _, alias := range aliases {
			if upper == alias {
				return sector, nil
			}
		}
	}
	return "", errdefs.Invalid("sector", name, "available sectors: [F C M]")
}

// AvailableSectors returns the sectors produced for product, or all sectors
// when product is empty or has no exception.
func AvailableSectors(product string) []Sector {
	if exc, ok := sectorExceptions[product]; ok {
		return append([]Sector(nil), exc...)
	}
	return []Sector{FullDisk, CONUS, Mesoscale}
}

type ScanMode string

const (
	M3 ScanMode = "M3"
	M4 ScanMode = "M4"
	M6 ScanMode = "M6"
)

// Scan modes:
//   - M3: default before 2 April 2019. F every 15 min, C every 5, M every 1.
//   - M4: Full Disk only, every 5 min.
//   - M6: default since 2 April 2019. F every 10 min, C every 5, M every 1.
var scanModes = []ScanMode{M3, M4, M6}

func ParseScanMode(name string) (ScanMode, error) {
	upper := ScanMode(strings.ToUpper(strings.TrimSpace(name)))
	for _, m := range scanModes {
		if m == upper {
			return m, nil
		}
	}
	return "", errdefs.Invalid("scan_mode", name, "available scan modes: %v", scanModes)
}

func AvailableScanModes() []ScanMode {
	return append([]ScanMode(nil), scanModes...)
}

// OperationalRealTime is the system environment of operational real-time data.
const OperationalRealTime = "OR"

// SystemEnvironments lists the valid environment tags:
// OR operational real-time, OT operational test, IR test-system real-time,
// IT test-system test, IP test-system playback, IS test-system simulated.
var systemEnvironments = []string{"OR", "OT", "IR", "IT", "IP", "IS"}

func ValidSystemEnvironment(value string) bool {
	for _, v := range systemEnvironments {
		if v == value {
			return true
		}
	}
	return false
}
