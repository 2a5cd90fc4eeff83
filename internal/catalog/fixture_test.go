package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rpucella.net/goes-catalog/internal/goes"
	"rpucella.net/goes-catalog/internal/metadata"
	"rpucella.net/goes-catalog/internal/storage"
	"rpucella.net/goes-catalog/internal/storage/storagetest"
)

const gcsRoot = "gs://gcp-public-data-goes-16"

// hm returns 2023-03-01 (day 060) hh:mm UTC.
func hm(hh, mm int) time.Time {
	return time.Date(2023, 3, 1, hh, mm, 0, 0, time.UTC)
}

// fullDisk builds an ABI L1b Full Disk M6 record starting at start. The raw
// times carry seconds that round back to the minute.
func fullDisk(start time.Time, channel string) metadata.Record {
	return metadata.Record{
		SystemEnvironment: "OR",
		Sensor:            goes.ABI,
		ProductLevel:      goes.L1b,
		Product:           "Rad",
		Sector:            goes.FullDisk,
		SceneAbbr:         "F",
		ScanMode:          "M6",
		Channel:           channel,
		Platform:          "G16",
		Satellite:         goes.GOES16,
		StartTime:         start.Add(20400 * time.Millisecond),
		EndTime:           start.Add(9*time.Minute + 51200*time.Millisecond),
		CreationTime:      start.Add(9*time.Minute + 56200*time.Millisecond),
	}
}

// objectPath places rec under root in the hourly directory of its start.
func objectPath(t *testing.T, root string, rec metadata.Record) string {
	t.Helper()
	name, err := metadata.Render(rec)
	require.NoError(t, err)
	d := Descriptor{Sensor: rec.Sensor, ProductLevel: rec.ProductLevel, Product: rec.Product, Sector: rec.Sector}
	s := rec.StartTime.UTC()
	hour := HourDir{Year: s.Year(), DOY: s.YearDay(), Hour: s.Hour()}
	return storage.Join(root, d.Dir(), hour.String(), name)
}

func putAll(t *testing.T, m *storagetest.Memory, root string, recs ...metadata.Record) []string {
	t.Helper()
	var paths []string
	for _, rec := range recs {
		p := objectPath(t, root, rec)
		m.Put(p, []byte(p))
		paths = append(paths, p)
	}
	return paths
}

// fullDiskSeries stores channels C01 and C02 at every start.
func fullDiskSeries(t *testing.T, m *storagetest.Memory, starts ...time.Time) {
	t.Helper()
	for _, s := range starts {
		putAll(t, m, gcsRoot, fullDisk(s, "C01"), fullDisk(s, "C02"))
	}
}

func filesOf(t *testing.T, recs ...metadata.Record) []File {
	t.Helper()
	var files []File
	for _, rec := range recs {
		p := objectPath(t, gcsRoot, rec)
		parsed, err := metadata.ParsePath(p)
		require.NoError(t, err)
		files = append(files, File{Path: p, Record: parsed})
	}
	sortFiles(files)
	return files
}

func radF(t *testing.T) Descriptor {
	t.Helper()
	d, err := NewDescriptor("goes-16", "ABI", "L1b", "Rad", "F", "")
	require.NoError(t, err)
	return d
}

func newTestFinder(m *storagetest.Memory, now time.Time) *Finder {
	return NewFinder(m, WithClock(FixedClock{T: now}))
}
