package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without files or environment", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile))
		require.NoError(t, err)

		assert.Equal(t, Defaults(), *cfg)
		assert.Equal(t, "app/roofers/data/roofers.ts", cfg.DataFile)
	})

	t.Run("local file overrides the base file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "roofdb.json5"), []byte(`{
  // shared settings
  port: "9000",
  dataFile: "data/roofers.ts",
  watch: true,
}`), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "roofdb.local.json5"), []byte(`{
  dataFile: "local/roofers.ts",
  adminToken: 'secret',
}`), 0644))

		cfg, err := Load(filepath.Join(dir, "roofdb.json5"))
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, "local/roofers.ts", cfg.DataFile)
		assert.Equal(t, "secret", cfg.AdminToken)
		assert.True(t, cfg.Watch)
		assert.Equal(t, BackendFile, cfg.Backend)
	})

	t.Run("environment wins over files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "roofdb.json5"), []byte(`{port: "9000"}`), 0644))

		t.Setenv("ROOFDB_PORT", "7000")
		t.Setenv("ROOFDB_BACKEND", BackendOverrides)
		t.Setenv("ROOFDB_WATCH", "true")
		t.Setenv("ROOFDB_LOG_LEVEL", "debug")

		cfg, err := Load(filepath.Join(dir, "roofdb.json5"))
		require.NoError(t, err)

		assert.Equal(t, "7000", cfg.Port)
		assert.Equal(t, BackendOverrides, cfg.Backend)
		assert.True(t, cfg.Watch)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("a broken file is reported", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "roofdb.json5"), []byte(`{port: `), 0644))

		_, err := Load(filepath.Join(dir, "roofdb.json5"))
		assert.Error(t, err)
	})

	t.Run("an unknown backend is rejected", func(t *testing.T) {
		t.Setenv("ROOFDB_BACKEND", "postgres")

		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestReadFiles(t *testing.T) {
	_, err := ReadFiles(filepath.Join(t.TempDir(), "missing.json5"))
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, filepath.Join("conf", "roofdb.local.json5"), localName(filepath.Join("conf", "roofdb.json5")))
	assert.Equal(t, "roofdb.local", localName("roofdb"))
}
