package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
)

func TestNewDescriptor(t *testing.T) {
	d, err := NewDescriptor("16", "abi", "l2", "cmip", "full disk", "")
	require.NoError(t, err)
	assert.Equal(t, Descriptor{Satellite: goes.GOES16, Sensor: goes.ABI, ProductLevel: goes.L2, Product: "CMIP", Sector: goes.FullDisk}, d)
	assert.Equal(t, "ABI-L2-CMIPF", d.Dir())

	d, err = NewDescriptor("G18", "ABI", "L1b", "Rad", "M1", "")
	require.NoError(t, err)
	assert.Equal(t, goes.Mesoscale, d.Sector)
	assert.Equal(t, "M1", d.SceneAbbr)
	assert.Equal(t, "ABI-L1b-RadM", d.Dir())

	d, err = NewDescriptor("goes-17", "GLM", "L2", "LCFA", "", "")
	require.NoError(t, err)
	assert.Equal(t, "GLM-L2-LCFA", d.Dir())
}

func TestNewDescriptorErrors(t *testing.T) {
	cases := map[string][]string{
		"unknown satellite":   {"goes-1", "ABI", "L1b", "Rad", "F", ""},
		"level not of sensor": {"16", "GLM", "L1b", "LCFA", "", ""},
		"product not found":   {"16", "ABI", "L1b", "CMIP", "F", ""},
		"missing sector":      {"16", "ABI", "L1b", "Rad", "", ""},
		"sector for GLM":      {"16", "GLM", "L2", "LCFA", "F", ""},
		"sector exception":    {"16", "ABI", "L2", "RSR", "M", ""},
		"scene for full disk": {"16", "ABI", "L1b", "Rad", "F", "M1"},
		"bad scene":           {"16", "ABI", "L1b", "Rad", "M", "M3"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewDescriptor(args[0], args[1], args[2], args[3], args[4], args[5])
			require.Error(t, err)
			assert.True(t, errdefs.IsValidation(err), err.Error())
		})
	}
}

func TestNewWindow(t *testing.T) {
	clock := FixedClock{T: hm(12, 0)}

	w, err := NewWindow(hm(11, 33).Add(42*time.Second), hm(11, 50).Add(5*time.Second), clock)
	require.NoError(t, err)
	assert.Equal(t, Window{Start: hm(11, 33), End: hm(11, 50)}, w)

	// future end is allowed
	_, err = NewWindow(hm(11, 0), hm(13, 0), clock)
	assert.NoError(t, err)

	_, err = NewWindow(hm(11, 50), hm(11, 33), clock)
	assert.True(t, errdefs.IsValidation(err))

	_, err = NewWindow(hm(12, 30), hm(13, 0), clock)
	assert.True(t, errdefs.IsValidation(err))
}

func TestPlan(t *testing.T) {
	dirs := Plan(hm(11, 33), hm(11, 50))
	assert.Equal(t, []HourDir{{2023, 60, 11}, {2023, 60, 12}}, dirs)
	assert.Equal(t, "2023/060/11", dirs[0].String())

	dirs = Plan(time.Date(2022, 12, 31, 23, 30, 0, 0, time.UTC), time.Date(2023, 1, 1, 0, 10, 0, 0, time.UTC))
	assert.Equal(t, []string{"2022/365/23", "2023/001/00"}, hourStrings(dirs))
}

func TestPlanIsStrictlyIncreasing(t *testing.T) {
	dirs := Plan(hm(0, 0), hm(23, 59))
	require.Len(t, dirs, 25)
	for i := 1; i < len(dirs); i++ {
		assert.Less(t, dirs[i-1].String(), dirs[i].String())
	}
}

func TestSearchDirs(t *testing.T) {
	// a start rounded up to the hour may sit in the previous directory
	assert.Equal(t, []string{"2023/060/11", "2023/060/12", "2023/060/13"}, hourStrings(searchDirs(hm(12, 0), hm(12, 5))))
	assert.Equal(t, hourStrings(Plan(hm(12, 1), hm(12, 5))), hourStrings(searchDirs(hm(12, 1), hm(12, 5))))

	dirs := searchDirs(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 1, 0, 10, 0, 0, time.UTC))
	assert.Equal(t, []string{"2022/365/23", "2023/001/00", "2023/001/01"}, hourStrings(dirs))
}

func hourStrings(dirs []HourDir) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = d.String()
	}
	return out
}
