package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpucella.net/goes-catalog/internal/errdefs"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDefaultsAndExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := filepath.Join(t.TempDir(), CONFIG_FILE)
	require.NoError(t, os.WriteFile(p, []byte("base_dir: ~/goes-data\nprotocol: s3\n"), 0o600))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, Config{
		BaseDir:     filepath.Join(home, "goes-data"),
		Protocol:    "s3",
		Concurrency: DefaultConcurrency,
		LogLevel:    DefaultLogLevel,
	}, cfg)
}

func TestLoadRejectsBadValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), CONFIG_FILE)
	require.NoError(t, os.WriteFile(p, []byte("protocol: ftp\n"), 0o600))
	_, err := Load(p)
	assert.True(t, errdefs.IsValidation(err))

	require.NoError(t, os.WriteFile(p, []byte("concurrency: [1\n"), 0o600))
	_, err = Load(p)
	assert.Error(t, err)
}

func TestWriteThenLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), CONFIG_FOLDER, CONFIG_FILE)
	cfg := Config{BaseDir: "/data/goes", Protocol: "gcs", Concurrency: 8, LogLevel: "debug"}
	require.NoError(t, Write(p, cfg))

	info, err := os.Stat(filepath.Dir(p))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	assert.Error(t, Write(p, Config{Protocol: "gcs", Concurrency: -1}))
}

func TestResolveBaseDir(t *testing.T) {
	cfg := Config{BaseDir: "/data/goes"}

	dir, err := cfg.ResolveBaseDir("")
	require.NoError(t, err)
	assert.Equal(t, "/data/goes", dir)

	dir, err = cfg.ResolveBaseDir("/tmp/other")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other", dir)

	_, err = Config{}.ResolveBaseDir("")
	assert.True(t, errdefs.IsValidation(err))
}
