package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
	"rpucella.net/goes-catalog/internal/metadata"
)

func series(starts ...time.Time) []metadata.Record {
	var recs []metadata.Record
	for _, s := range starts {
		recs = append(recs, fullDisk(s, "C01"), fullDisk(s, "C02"))
	}
	return recs
}

func consistencyError(t *testing.T, err error) *errdefs.ConsistencyError {
	t.Helper()
	var ce *errdefs.ConsistencyError
	require.True(t, errors.As(err, &ce), "expected ConsistencyError, got %v", err)
	return ce
}

func TestRegularSequencePasses(t *testing.T) {
	files := filesOf(t, series(hm(11, 0), hm(11, 10), hm(11, 20), hm(11, 30), hm(11, 40), hm(11, 50))...)
	win := Window{hm(11, 0), hm(12, 0)}

	assert.NoError(t, EnsureAll(files, "ABI-L1b-RadF", win))
	assert.NoError(t, EnsureRegularTimesteps(files, 10*time.Minute))
}

func TestMissingTimestepNamesInterval(t *testing.T) {
	files := filesOf(t, series(hm(11, 0), hm(11, 10), hm(11, 30), hm(11, 40), hm(11, 50))...)

	err := EnsureNoGaps(files)
	ce := consistencyError(t, err)
	assert.Equal(t, CheckNoGaps, ce.Check)
	assert.Equal(t, []errdefs.Interval{{Start: hm(11, 20), End: hm(11, 30)}}, ce.Intervals)
	assert.Contains(t, err.Error(), "(2023-03-01 11:20:00, 2023-03-01 11:30:00)")

	err = EnsureAll(files, "ABI-L1b-RadF", Window{hm(11, 0), hm(12, 0)})
	assert.True(t, errdefs.IsConsistency(err))

	assert.Error(t, EnsureRegularTimesteps(files, 0))
}

func TestNoGapsFallsBackToObservedInterval(t *testing.T) {
	var recs []metadata.Record
	for _, s := range []time.Time{hm(12, 0), hm(12, 1), hm(12, 2), hm(12, 5)} {
		recs = append(recs, metadata.Record{
			SystemEnvironment: "OR", Sensor: goes.GLM, ProductLevel: goes.L2, Product: "LCFA",
			Platform: "G16", Satellite: goes.GOES16,
			StartTime: s, EndTime: s.Add(20 * time.Second), CreationTime: s.Add(time.Minute),
		})
	}
	files := filesOf(t, recs...)
	ce := consistencyError(t, EnsureNoGaps(files))
	assert.Equal(t, []errdefs.Interval{{Start: hm(12, 2), End: hm(12, 5)}}, ce.Intervals)
}

func TestEnsureOperational(t *testing.T) {
	recs := series(hm(11, 0))
	recs[1].SystemEnvironment = "OT"
	files := filesOf(t, recs...)

	ce := consistencyError(t, EnsureOperational(files))
	assert.Equal(t, []string{files[1].Path}, ce.Paths)
}

func TestEnsureAvailable(t *testing.T) {
	err := EnsureAvailable(nil, "ABI-L1b-RadF", Window{hm(11, 0), hm(12, 0)})
	require.Error(t, err)
	assert.True(t, errdefs.IsNotFound(err))
	assert.Contains(t, err.Error(), "2023-03-01 11:00:00")
	assert.Contains(t, err.Error(), "2023-03-01 12:00:00")
}

func TestEnsureFixedScanMode(t *testing.T) {
	recs := series(hm(11, 0), hm(11, 10))
	recs[3].ScanMode = "M3"
	ce := consistencyError(t, EnsureFixedScanMode(filesOf(t, recs...)))
	assert.Equal(t, []string{"M3", "M6"}, ce.Values)
}

func TestEnsureCoverage(t *testing.T) {
	files := filesOf(t, series(hm(11, 10), hm(11, 20))...)

	ce := consistencyError(t, EnsureCoverage(files, Window{hm(11, 0), hm(11, 40)}))
	assert.Equal(t, []errdefs.Interval{
		{Start: hm(11, 0), End: hm(11, 10)},
		{Start: hm(11, 30), End: hm(11, 40)},
	}, ce.Intervals)

	assert.NoError(t, EnsureCoverage(files, Window{hm(11, 15), hm(11, 25)}))
}

func TestEnsureUniformBandCount(t *testing.T) {
	recs := series(hm(11, 0), hm(11, 10), hm(11, 20))
	recs = append(recs[:3], recs[4:]...) // drop C02 at 11:10
	ce := consistencyError(t, EnsureUniformBandCount(filesOf(t, recs...)))
	assert.Equal(t, []string{"2023-03-01 11:10:00 has 1 files, expected 2"}, ce.Values)

	// a band missing everywhere is not detected
	files := filesOf(t, fullDisk(hm(11, 0), "C01"), fullDisk(hm(11, 10), "C01"))
	assert.NoError(t, EnsureUniformBandCount(files))
}

func TestEnsureRegularTimesteps(t *testing.T) {
	err := EnsureRegularTimesteps(filesOf(t, series(hm(11, 0))...), 0)
	assert.True(t, errdefs.IsConsistency(err))

	files := filesOf(t, series(hm(11, 0), hm(11, 10))...)
	assert.NoError(t, EnsureRegularTimesteps(files, 0))
	assert.Error(t, EnsureRegularTimesteps(files, 15*time.Minute))
}
