// Package catalog discovers GOES-R files: it plans which hourly directories
// to list, parses and filters the listed filenames, groups the results,
// validates operational invariants and locates acquisitions in time.
package catalog

import (
	"slices"
	"strings"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
)

// Descriptor identifies one independently cadenced data stream.
type Descriptor struct {
	Satellite    goes.Satellite
	Sensor       goes.Sensor
	ProductLevel goes.ProductLevel
	Product      string
	Sector       goes.Sector // ABI only
	SceneAbbr    string      // M1 or M2, mesoscale only
}

// NewDescriptor resolves aliases and validates the combination against the
// registries. sector is required for ABI and rejected for other sensors.
func NewDescriptor(satellite, sensor, level, product, sector, sceneAbbr string) (Descriptor, error) {
	var d Descriptor
	var err error
	if d.Satellite, err = goes.ParseSatellite(satellite); err != nil {
		return Descriptor{}, err
	}
	if d.Sensor, err = goes.ParseSensor(sensor); err != nil {
		return Descriptor{}, err
	}
	if d.ProductLevel, err = goes.ParseProductLevel(level); err != nil {
		return Descriptor{}, err
	}
	if !slices.Contains(goes.AvailableProductLevels(d.Sensor), d.ProductLevel) {
		return Descriptor{}, errdefs.Invalid("product_level", level, "%s has levels %v", d.Sensor, goes.AvailableProductLevels(d.Sensor))
	}
	if d.Product, err = goes.ParseProduct(product, d.Sensor, d.ProductLevel); err != nil {
		return Descriptor{}, err
	}

	if d.Sensor != goes.ABI {
		if sector != "" || sceneAbbr != "" {
			return Descriptor{}, errdefs.Invalid("sector", sector, "%s has no sectors", d.Sensor)
		}
		return d, nil
	}

	if sector == "" {
		return Descriptor{}, errdefs.Invalid("sector", "", "required for %s", d.Sensor)
	}
	if d.Sector, err = goes.ParseSector(sector); err != nil {
		return Descriptor{}, err
	}
	if !slices.Contains(goes.AvailableSectors(d.Product), d.Sector) {
		return Descriptor{}, errdefs.Invalid("sector", sector, "%s is produced for sectors %v", d.Product, goes.AvailableSectors(d.Product))
	}
	// "M1" and "M2" given as sector select a mesoscale domain
	if scene := strings.ToUpper(strings.TrimSpace(sector)); scene == "M1" || scene == "M2" {
		if sceneAbbr == "" {
			sceneAbbr = scene
		}
	}
	if sceneAbbr != "" {
		scene := strings.ToUpper(strings.TrimSpace(sceneAbbr))
		if d.Sector != goes.Mesoscale || (scene != "M1" && scene != "M2") {
			return Descriptor{}, errdefs.Invalid("scene_abbr", sceneAbbr, "only M1 or M2 with the mesoscale sector")
		}
		d.SceneAbbr = scene
	}
	return d, nil
}

// Dir is the product directory name under the bucket root, e.g.
// ABI-L1b-RadF or GLM-L2-LCFA.
func (d Descriptor) Dir() string {
	return string(d.Sensor) + "-" + string(d.ProductLevel) + "-" + d.Product + string(d.Sector)
}

func (d Descriptor) String() string {
	s := string(d.Satellite) + " " + d.Dir()
	if d.SceneAbbr != "" {
		s += " " + d.SceneAbbr
	}
	return s
}
