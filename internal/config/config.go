package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rescp17/previewsender/pkg/preview"
	"gopkg.in/yaml.v3"
)

// Config holds the dialog settings stored at ~/.config/previewsender/config.yaml.
type Config struct {
	// PreferCollage is the remembered choice between media and collage mode.
	PreferCollage bool `yaml:"prefer_collage"`

	// PeerURL is the chat peer to deliver to. Empty means discover one over mDNS.
	PeerURL string `yaml:"peer_url,omitempty"`

	CaptionLimit  int `yaml:"caption_limit"`
	ThumbnailSize int `yaml:"thumbnail_size"`
	Workers       int `yaml:"workers"`

	DeriveTimeout    time.Duration `yaml:"derive_timeout"`
	SendTimeout      time.Duration `yaml:"send_timeout"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		CaptionLimit:     preview.DefaultCaptionLimit,
		ThumbnailSize:    320,
		Workers:          4,
		DeriveTimeout:    time.Minute,
		SendTimeout:      2 * time.Minute,
		DiscoveryTimeout: 5 * time.Second,
	}
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.CaptionLimit <= 0 {
		return errors.New("caption_limit must be positive")
	}
	if c.CaptionLimit > preview.DefaultCaptionLimit {
		return fmt.Errorf("caption_limit must not exceed %d", preview.DefaultCaptionLimit)
	}
	if c.ThumbnailSize <= 0 {
		return errors.New("thumbnail_size must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.DeriveTimeout <= 0 || c.SendTimeout <= 0 || c.DiscoveryTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// Path returns the default config file path.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "previewsender", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Store persists the collage preference back to the config file whenever
// it changes.
type Store struct {
	cfg  *Config
	path string
}

func NewStore(cfg *Config, path string) *Store {
	return &Store{cfg: cfg, path: path}
}

func (s *Store) PreferCollage() bool {
	return s.cfg.PreferCollage
}

func (s *Store) SetPreferCollage(v bool) {
	if s.cfg.PreferCollage == v {
		return
	}
	s.cfg.PreferCollage = v
	if s.path == "" {
		return
	}
	if err := s.cfg.Save(s.path); err != nil {
		slog.Warn("Failed to persist collage preference", "path", s.path, "error", err)
	}
}
