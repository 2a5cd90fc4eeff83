package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
)

const sample = "OR_ABI-L1b-RadF-M6C01_G16_s20222800000204_e20222800009512_c20222800009562.nc"

func TestRoot(t *testing.T) {
	root, err := Root(GCS, goes.GOES16, "")
	require.NoError(t, err)
	assert.Equal(t, "gs://gcp-public-data-goes-16", root)

	root, err = Root(S3, goes.GOES18, "")
	require.NoError(t, err)
	assert.Equal(t, "s3://noaa-goes18", root)

	root, err = Root(Local, goes.GOES17, "/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "GOES-17"), root)

	_, err = Root(Local, goes.GOES17, "")
	assert.True(t, errdefs.IsValidation(err))

	_, err = Root("ftp", goes.GOES17, "")
	assert.True(t, errdefs.IsValidation(err))
}

func TestParseProtocol(t *testing.T) {
	p, err := ParseProtocol("GS")
	require.NoError(t, err)
	assert.Equal(t, GCS, p)

	p, err = ParseProtocol("s3")
	require.NoError(t, err)
	assert.Equal(t, S3, p)

	_, err = ParseProtocol("azure")
	assert.True(t, errdefs.IsValidation(err))
}

func TestConnect(t *testing.T) {
	gs := "gs://gcp-public-data-goes-16/ABI-L1b-RadF/2022/280/00/" + sample
	s3 := "s3://noaa-goes16/ABI-L1b-RadF/2022/280/00/" + sample

	got, err := Connect(gs, Bucket)
	require.NoError(t, err)
	assert.Equal(t, gs, got)

	got, err = Connect(gs, HTTPS)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/gcp-public-data-goes-16/ABI-L1b-RadF/2022/280/00/"+sample, got)

	got, err = Connect(s3, NCBytes)
	require.NoError(t, err)
	assert.Equal(t, "https://noaa-goes16.s3.amazonaws.com/ABI-L1b-RadF/2022/280/00/"+sample+"#mode=bytes", got)

	got, err = Connect("/data/GOES-16/"+sample, HTTPS)
	require.NoError(t, err)
	assert.Equal(t, "/data/GOES-16/"+sample, got)

	_, err = Connect(gs, "ftp")
	assert.True(t, errdefs.IsValidation(err))
}

func TestLocalPath(t *testing.T) {
	got := LocalPath("s3://noaa-goes16/ABI-L1b-RadF/2022/280/00/"+sample, goes.GOES16, "/data")
	assert.Equal(t, filepath.Join("/data", "GOES-16", "ABI-L1b-RadF", "2022", "280", "00", sample), got)
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "gs://b/ABI-L1b-RadF/2022/001/00", Join("gs://b", "ABI-L1b-RadF", "2022/001/00"))
	assert.Equal(t, filepath.Join("/x", "a", "b"), Join("/x", "a", "b"))
}

func TestLocalFileSystem(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	dir := filepath.Join(root, "2022", "280", "00")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, sample), []byte("abcd"), 0o644))

	fs := NewLocalFileSystem()
	files, err := fs.List(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, sample)}, files)

	dirs, err := fs.Dirs(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"nested"}, dirs)

	files, err = fs.List(ctx, filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)

	size, err := fs.Stat(ctx, files0(t, fs, dir))
	require.NoError(t, err)
	assert.EqualValues(t, 4, size)

	dest := filepath.Join(root, "out", "copy.nc")
	require.NoError(t, fs.Fetch(ctx, filepath.Join(dir, sample), dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))
}

func files0(t *testing.T, s Storage, dir string) string {
	files, err := s.List(context.Background(), dir)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	return files[0]
}

func TestCopyToFileRemovesPartialFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "2023", "060", "11", "partial.nc")
	boom := errors.New("connection reset")
	err := copyToFile(dest, io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(boom)), nil)
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, dest)

	require.NoError(t, copyToFile(dest, strings.NewReader("abcd"), nil))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))
}
