package goes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpucella.net/goes-catalog/internal/errdefs"
)

func TestParseSatellite(t *testing.T) {
	for _, alias := range []string{"16", "g16", "GOES-16", "goes16"} {
		sat, err := ParseSatellite(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, GOES16, sat)
	}
	assert.Equal(t, "G17", GOES17.Platform())

	_, err := ParseSatellite("meteosat")
	assert.True(t, errdefs.IsValidation(err))
}

func TestParseSector(t *testing.T) {
	cases := map[string]Sector{
		"full disk": FullDisk,
		"FLDK":      FullDisk,
		"pacus":     CONUS,
		"M2":        Mesoscale,
	}
	for in, want := range cases {
		got, err := ParseSector(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSector("X")
	assert.Error(t, err)
}

func TestParseProductLevel(t *testing.T) {
	level, err := ParseProductLevel("l1b")
	require.NoError(t, err)
	assert.Equal(t, L1b, level)

	level, err = ParseProductLevel("l2")
	require.NoError(t, err)
	assert.Equal(t, L2, level)

	_, err = ParseProductLevel("L3")
	assert.True(t, errdefs.IsValidation(err))
}

func TestParseProduct(t *testing.T) {
	p, err := ParseProduct("cmip", ABI, L2)
	require.NoError(t, err)
	assert.Equal(t, "CMIP", p)

	_, err = ParseProduct("Rad", ABI, L2)
	assert.Error(t, err)
}

func TestParseChannel(t *testing.T) {
	cases := map[string]string{
		"c13":   "C13",
		"1":     "C01",
		"0.64":  "C02",
		"ozone": "C12",
		"CO2":   "C16",
	}
	for in, want := range cases {
		got, err := ParseChannel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseChannel("C17")
	assert.Error(t, err)
}

func TestAvailableSectors(t *testing.T) {
	assert.Equal(t, []Sector{FullDisk}, AvailableSectors("SST"))
	assert.Equal(t, []Sector{FullDisk, CONUS, Mesoscale}, AvailableSectors("CMIP"))
}

func TestAvailableProductLevels(t *testing.T) {
	assert.Equal(t, []ProductLevel{L1b, L2}, AvailableProductLevels())
	assert.Equal(t, []ProductLevel{L2}, AvailableProductLevels(GLM))
	assert.Equal(t, []ProductLevel{L1b, L2}, AvailableProductLevels(ABI, MAG))
}

func TestCadence(t *testing.T) {
	d, ok := Cadence(FullDisk, M6)
	require.True(t, ok)
	assert.Equal(t, 10*time.Minute, d)

	d, ok = Cadence(CONUS, M6)
	require.True(t, ok)
	assert.Equal(t, 5*time.Minute, d)

	_, ok = Cadence(CONUS, M4)
	assert.False(t, ok)

	assert.Equal(t, time.Minute, SearchBound(Mesoscale))
	assert.Equal(t, 15*time.Minute, SearchBound(""))
}

func TestProductsIsACopy(t *testing.T) {
	listing := Products()
	listing[ABI][L1b][0] = "changed"
	assert.Equal(t, []string{"Rad"}, Products()[ABI][L1b])
}
