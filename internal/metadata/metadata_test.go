package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
)

func TestParseABIL1b(t *testing.T) {
	name := "OR_ABI-L1b-RadF-M6C01_G16_s20222800000204_e20222800009512_c20222800009562.nc"
	rec, err := Parse(name, goes.ABI, goes.L1b)
	require.NoError(t, err)

	assert.Equal(t, "OR", rec.SystemEnvironment)
	assert.Equal(t, goes.ABI, rec.Sensor)
	assert.Equal(t, goes.L1b, rec.ProductLevel)
	assert.Equal(t, "Rad", rec.Product)
	assert.Equal(t, "F", rec.SceneAbbr)
	assert.Equal(t, goes.FullDisk, rec.Sector)
	assert.Equal(t, "M6", rec.ScanMode)
	assert.Equal(t, "C01", rec.Channel)
	assert.Equal(t, "G16", rec.Platform)
	assert.Equal(t, goes.GOES16, rec.Satellite)
	assert.Equal(t, time.Date(2022, 10, 7, 0, 0, 0, 0, time.UTC), rec.StartTime)
	assert.Equal(t, time.Date(2022, 10, 7, 0, 10, 0, 0, time.UTC), rec.EndTime)
	assert.Equal(t, time.Date(2022, 10, 7, 0, 9, 56, 200_000_000, time.UTC), rec.CreationTime)
}

func TestParseABIL1bMesoscale(t *testing.T) {
	name := "OR_ABI-L1b-RadM2-M6C07_G18_s20222801200277_e20222801200346_c20222801200408.nc"
	rec, err := ParsePath("gs://gcp-public-data-goes-18/ABI-L1b-RadM/2022/280/12/" + name)
	require.NoError(t, err)

	assert.Equal(t, "M2", rec.SceneAbbr)
	assert.Equal(t, goes.Mesoscale, rec.Sector)
	assert.Equal(t, goes.GOES18, rec.Satellite)
	assert.Equal(t, time.Date(2022, 10, 7, 12, 0, 0, 0, time.UTC), rec.StartTime)
	assert.Equal(t, time.Date(2022, 10, 7, 12, 1, 0, 0, time.UTC), rec.EndTime)
}

func TestParseABIL2SplitsProductAndScene(t *testing.T) {
	cases := []struct {
		name    string
		product string
		scene   string
		sector  goes.Sector
		mode    string
		channel string
	}{
		{"OR_ABI-L2-CMIPF-M6C13_G16_s20222800000204_e20222800009512_c20222800009562.nc", "CMIP", "F", goes.FullDisk, "M6", "C13"},
		{"OR_ABI-L2-ACHAM1-M6_G16_s20222800000204_e20222800009512_c20222800009562.nc", "ACHA", "M1", goes.Mesoscale, "M6", ""},
		{"OR_ABI-L2-MCMIPC-M3_G17_s20182800000204_e20182800009512_c20182800009562.nc", "MCMIP", "C", goes.CONUS, "M3", ""},
		{"OR_ABI-L2-LST2KMF-M6_G16_s20222800000204_e20222800009512_c20222800009562.nc", "LST2KM", "F", goes.FullDisk, "M6", ""},
	}
	for _, tc := range cases {
		t.Run(tc.product, func(t *testing.T) {
			rec, err := ParsePath(tc.name)
			require.NoError(t, err)
			assert.Equal(t, goes.L2, rec.ProductLevel)
			assert.Equal(t, tc.product, rec.Product)
			assert.Equal(t, tc.scene, rec.SceneAbbr)
			assert.Equal(t, tc.sector, rec.Sector)
			assert.Equal(t, tc.mode, rec.ScanMode)
			assert.Equal(t, tc.channel, rec.Channel)
		})
	}
}

func TestParseGLM(t *testing.T) {
	rec, err := ParsePath("/data/GOES-16/GLM-L2-LCFA/2022/280/12/OR_GLM-L2-LCFA_G16_s20222801200000_e20222801200200_c20222801200217.nc")
	require.NoError(t, err)
	assert.Equal(t, goes.GLM, rec.Sensor)
	assert.Equal(t, "LCFA", rec.Product)
	assert.Empty(t, rec.ScanMode)
	assert.Empty(t, rec.Sector)
	assert.Empty(t, rec.SceneAbbr)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"wrong sensor":  "OR_GLM-L2-LCFA_G16_s20222801200000_e20222801200200_c20222801200217.nc",
		"garbage":       "README.txt",
		"bad platform":  "OR_ABI-L1b-RadF-M6C01_G99_s20222800000204_e20222800009512_c20222800009562.nc",
		"bad doy":       "OR_ABI-L1b-RadF-M6C01_G16_s20223990000204_e20223990009512_c20223990009562.nc",
		"unknown scene": "OR_ABI-L1b-RadX-M6C01_G16_s20222800000204_e20222800009512_c20222800009562.nc",
		"unknown env":   "XX_ABI-L1b-RadF-M6C01_G16_s20222800000204_e20222800009512_c20222800009562.nc",
	}
	for name, filename := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(filename, goes.ABI, goes.L1b)
			require.Error(t, err)
			assert.True(t, errdefs.IsParse(err))
		})
	}

	_, err := ParsePath("notes.md")
	assert.True(t, errdefs.IsParse(err))
}

func TestRoundToMinute(t *testing.T) {
	base := time.Date(2022, 1, 1, 11, 33, 0, 0, time.UTC)
	assert.Equal(t, base, RoundToMinute(base.Add(29*time.Second)))
	assert.Equal(t, base.Add(time.Minute), RoundToMinute(base.Add(30*time.Second)))
}

func TestRenderRoundTrip(t *testing.T) {
	start := time.Date(2023, 3, 1, 11, 20, 0, 0, time.UTC)
	records := []Record{
		{
			SystemEnvironment: "OR", Sensor: goes.ABI, ProductLevel: goes.L1b, Product: "Rad",
			Sector: goes.FullDisk, SceneAbbr: "F", ScanMode: "M6", Channel: "C02", Platform: "G16",
			Satellite: goes.GOES16, StartTime: start, EndTime: start.Add(10 * time.Minute),
			CreationTime: start.Add(10*time.Minute + 300*time.Millisecond),
		},
		{
			SystemEnvironment: "OT", Sensor: goes.ABI, ProductLevel: goes.L2, Product: "CMIP",
			Sector: goes.Mesoscale, SceneAbbr: "M1", ScanMode: "M3", Channel: "C13", Platform: "G17",
			Satellite: goes.GOES17, StartTime: start, EndTime: start.Add(time.Minute),
			CreationTime: start.Add(2 * time.Minute),
		},
		{
			SystemEnvironment: "OR", Sensor: goes.ABI, ProductLevel: goes.L2, Product: "ACM",
			Sector: goes.CONUS, SceneAbbr: "C", ScanMode: "M6", Platform: "G18",
			Satellite: goes.GOES18, StartTime: start, EndTime: start.Add(5 * time.Minute),
			CreationTime: start.Add(6 * time.Minute),
		},
		{
			SystemEnvironment: "OR", Sensor: goes.SEIS, ProductLevel: goes.L1b, Product: "MPSH",
			Platform: "G16", Satellite: goes.GOES16, StartTime: start, EndTime: start.Add(5 * time.Minute),
			CreationTime: start.Add(5*time.Minute + 900*time.Millisecond),
		},
	}
	for _, rec := range records {
		name, err := Render(rec)
		require.NoError(t, err)
		got, err := ParsePath(name)
		require.NoError(t, err, name)
		assert.Equal(t, rec, got, name)
	}
}

func TestKeys(t *testing.T) {
	k, err := ParseKey("start_time")
	require.NoError(t, err)
	assert.True(t, k.IsTime())

	_, err = ParseKey("colour")
	assert.True(t, errdefs.IsValidation(err))

	paths := []string{
		"OR_ABI-L1b-RadF-M6C01_G16_s20222800000204_e20222800009512_c20222800009562.nc",
		"OR_ABI-L1b-RadF-M6C02_G16_s20222800000204_e20222800009512_c20222800009562.nc",
	}
	channels, err := Values(paths, KeyChannel)
	require.NoError(t, err)
	assert.Equal(t, []string{"C01", "C02"}, channels)

	starts, err := Values(paths[:1], KeyStartTime)
	require.NoError(t, err)
	assert.Equal(t, []string{"2022-10-07T00:00:00Z"}, starts)
}
