package testsupport

import (
	"path/filepath"
	"testing"

	"reelsplit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Catalogue.BaseURL = "https://catalogue.test.invalid/api"
	cfg.Catalogue.APIKey = "test"
	cfg.Paths.ProcessingDir = filepath.Join(base, "processing")
	cfg.Paths.SegmentedDir = filepath.Join(base, "segmented")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithHandleFrames overrides the protective handle size on the test config.
func WithHandleFrames(frames int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Splitting.HandleFrames = frames
	}
}

// WithControlFile points the test config at a downtime control file.
func WithControlFile(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.ControlFile = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ProcessingDir)
}
