package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200, cfg.CaptionLimit)
	assert.False(t, cfg.PreferCollage)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero caption limit", func(c *Config) { c.CaptionLimit = 0 }},
		{"caption limit above 200", func(c *Config) { c.CaptionLimit = 201 }},
		{"zero thumbnail", func(c *Config) { c.ThumbnailSize = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"negative send timeout", func(c *Config) { c.SendTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_CaptionLimitBounds(t *testing.T) {
	for _, limit := range []int{1, 140, 200} {
		cfg := Default()
		cfg.CaptionLimit = limit
		assert.NoError(t, cfg.Validate(), "limit %d", limit)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "prefer_collage: true\npeer_url: http://10.0.0.2:8080\nsend_timeout: 30s\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.PreferCollage)
	assert.Equal(t, "http://10.0.0.2:8080", cfg.PeerURL)
	assert.Equal(t, 30*time.Second, cfg.SendTimeout)
	assert.Equal(t, 200, cfg.CaptionLimit)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("caption_limit: [1"), 0o600))
	_, err := Load(bad)
	assert.Error(t, err)

	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero, []byte("workers: 0\n"), 0o600))
	_, err = Load(zero)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.PreferCollage = true
	cfg.DeriveTimeout = 90 * time.Second
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestStore_PersistsPreference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := NewStore(Default(), path)

	store.SetPreferCollage(true)
	assert.True(t, store.PreferCollage())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.PreferCollage)

	store.SetPreferCollage(false)
	loaded, err = Load(path)
	require.NoError(t, err)
	assert.False(t, loaded.PreferCollage)
}

func TestStore_UnchangedValueSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	store := NewStore(Default(), path)

	store.SetPreferCollage(false)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
