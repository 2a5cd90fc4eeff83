package goes

import (
	"sort"
	"strings"
	"time"

	"rpucella.net/goes-catalog/internal/errdefs"
)

var products = map[Sensor]map[ProductLevel]map[string]string{
	ABI: {
		L1b: {
			"Rad": "Radiances",
		},
		L2: {
			"ACHA":   "Cloud Top Height",
			"ACHT":   "Cloud Top Temperature",
			"ACM":    "Clear Sky Masks",
			"ACTP":   "Cloud Top Phase",
			"ADP":    "Aerosol Detection",
			"AICE":   "Ice Concentration and Extent",
			"AITA":   "Ice Thickness and Age",
			"AOD":    "Aerosol Optical Depth",
			"BRF":    "Land Surface Bidirectional Reflectance Factor",
			"CMIP":   "Cloud and Moisture Imagery",
			"COD":    "Cloud Optical Depth",
			"CPS":    "Cloud Particle Size",
			"CTP":    "Cloud Top Pressure",
			"DMW":    "Derived Motion Winds",
			"DMWV":   "Derived Motion Winds (Clear Sky)",
			"DSI":    "Derived Stability Indices",
			"DSR":    "Downward Shortwave Radiation",
			"FDC":    "Fire/Hot Spot Characterization",
			"LSA":    "Land Surface Albedo",
			"LST":    "Land Surface Temperature",
			"LST2KM": "Land Surface Temperature",
			"LVMP":   "Legacy Vertical Moisture Profile",
			"LVTP":   "Legacy Vertical Temperature Profile",
			"MCMIP":  "Cloud and Moisture Imagery (Multi-band format)",
			"RRQPE":  "Rainfall Rate (QPE)",
			"RSR":    "Reflected Shortwave Radiation at TOA",
			"SST":    "Sea Surface (Skin) Temperature",
			"TPW":    "Total Precipitable Water",
			"VAA":    "Volcanic Ash",
		},
	},
	GLM: {
		L2: {
			"LCFA": "Lightning Cluster Filter Algorithm",
		},
	},
	SUVI: {
		L1b: {
			"Fe093": "Solar Ultraviolet Imager Level 1b Extreme Ultraviolet",
			"Fe131": "Solar Ultraviolet Imager Level 1b Extreme Ultraviolet",
			"Fe171": "Solar Ultraviolet Imager Level 1b Extreme Ultraviolet",
			"Fe195": "Solar Ultraviolet Imager Level 1b Extreme Ultraviolet",
			"Fe284": "Solar Ultraviolet Imager Level 1b Extreme Ultraviolet",
			"He303": "Solar Ultraviolet Imager Level 1b Extreme Ultraviolet",
		},
	},
	EXIS: {
		L1b: {
			"SFEU": "Solar Flux: EUV Data",
			"SFXR": "Solar Flux: X-Ray Data",
		},
	},
	SEIS: {
		L1b: {
			"EHIS": "Energetic Heavy Ion Sensor",
			"MPSH": "Magnetospheric Particle Sensor (High Energy)",
			"MPSL": "Magnetospheric Particle Sensor (Low Energy)",
			"SGPS": "Solar and Galactic Proton Sensor",
		},
	},
	MAG: {
		L1b: {
			"GEOF": "Geomagnetic Field",
		},
	},
}

// ABI L2 products not produced for every sector.
var sectorExceptions = map[string][]Sector{
	"AICE":   {FullDisk},
	"ACHT":   {FullDisk, Mesoscale},
	"AITA":   {FullDisk},
	"LST2KM": {FullDisk},
	"RRQPE":  {FullDisk},
	"SST":    {FullDisk},
	"VAA":    {FullDisk},
	"AOD":    {FullDisk, CONUS},
	"COD":    {FullDisk, CONUS},
	"CTP":    {FullDisk, CONUS},
	"RSR":    {FullDisk, CONUS},
}

// AvailableProducts lists the products of a sensor and level. Empty arguments
// widen the selection.
func AvailableProducts(sensor Sensor, level ProductLevel) []string {
	var out []string
	for s, levels := range products {
		if sensor != "" && s != sensor {
			continue
		}
		for l, table := range levels {
			if level != "" && l != level {
				continue
			}
			for name := range table {
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Products returns the {sensor: {level: [products]}} listing.
func Products() map[Sensor]map[ProductLevel][]string {
	out := make(map[Sensor]map[ProductLevel][]string, len(products))
	for s, levels := range products {
		out[s] = make(map[ProductLevel][]string, len(levels))
		for l := range levels {
			out[s][l] = AvailableProducts(s, l)
		}
	}
	return out
}

// ProductDescription returns the long name of a product.
func ProductDescription(sensor Sensor, level ProductLevel, product string) (string, bool) {
	desc, ok := products[sensor][level][product]
	return desc, ok
}

// ParseProduct resolves a product name case-insensitively within sensor and level.
func ParseProduct(name string, sensor Sensor, level ProductLevel) (string, error) {
	valid := AvailableProducts(sensor, level)
	for _, p := range valid {
		if strings.EqualFold(p, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return "", errdefs.Invalid("product", name, "available %s %s products: %v", level, sensor, valid)
}

var channelAliases = map[string][]string{
	"C01": {"C01", "1", "01", "0.47", "BLUE", "B"},
	"C02": {"C02", "2", "02", "0.64", "RED", "R"},
	"C03": {"C03", "3", "03", "0.86", "VEGGIE"},
	"C04": {"C04", "4", "04", "1.37", "CIRRUS"},
	"C05": {"C05", "5", "05", "1.6", "SNOW/ICE"},
	"C06": {"C06", "6", "06", "2.2", "CLOUD PARTICLE SIZE", "CPS"},
	"C07": {"C07", "7", "07", "3.9", "IR SHORTWAVE WINDOW", "IR SHORTWAVE"},
	"C08": {"C08", "8", "08", "6.2", "UPPER-LEVEL TROPOSPHERIC WATER VAPOUR", "UPPER-LEVEL WATER VAPOUR"},
	"C09": {"C09", "9", "09", "6.9", "MID-LEVEL TROPOSPHERIC WATER VAPOUR", "MID-LEVEL WATER VAPOUR"},
	"C10": {"C10", "10", "7.3", "LOWER-LEVEL TROPOSPHERIC WATER VAPOUR", "LOWER-LEVEL WATER VAPOUR"},
	"C11": {"C11", "11", "8.4", "CLOUD-TOP PHASE", "CTP"},
	"C12": {"C12", "12", "9.6", "OZONE"},
	"C13": {"C13", "13", "10.3", "CLEAN IR LONGWAVE WINDOW", "CLEAN IR"},
	"C14": {"C14", "14", "11.2", "IR LONGWAVE WINDOW", "IR LONGWAVE"},
	"C15": {"C15", "15", "12.3", "DIRTY LONGWAVE WINDOW", "DIRTY IR"},
	"C16": {"C16", "16", "13.3", "CO2 IR LONGWAVE", "CO2", "CO2 IR"},
}

// ParseChannel resolves an ABI channel name, number, wavelength or alias.
func ParseChannel(name string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if _, ok := channelAliases[upper]; ok {
		return upper, nil
	}
	for channel, aliases := range channelAliases {
		for _, alias := range aliases {
			if upper == alias {
				return channel, nil
			}
		}
	}
	return "", errdefs.Invalid("channel", name, "available channels: %v", AvailableChannels())
}

func AvailableChannels() []string {
	out := make([]string, 0, len(channelAliases))
	for c := range channelAliases {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ABI acquisition cadence in minutes, keyed by sector then scan mode.
// C and M are not produced in M4.
var abiCadence = map[Sector]map[ScanMode]int{
	FullDisk:  {M3: 15, M6: 10, M4: 5},
	CONUS:     {M3: 5, M6: 5},
	Mesoscale: {M3: 1, M6: 1},
}

// Cadence returns the expected interval between ABI acquisitions for a
// sector and scan mode.
func Cadence(sector Sector, mode ScanMode) (time.Duration, bool) {
	minutes, ok := abiCadence[sector][mode]
	if !ok {
		return 0, false
	}
	return time.Duration(minutes) * time.Minute, true
}

// SearchBound is the half-width of the window used to look for a
// neighbouring acquisition. Full Disk uses 15 minutes to cover every scan
// mode; sensors without sectors use the same bound.
func SearchBound(sector Sector) time.Duration {
	switch sector {
	case Mesoscale:
		return time.Minute
	case CONUS:
		return 5 * time.Minute
	default:
		return 15 * time.Minute
	}
}
