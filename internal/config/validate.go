package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalogue(); err != nil {
		return err
	}
	if err := c.validateSplitting(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalogue() error {
	if c.Catalogue.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelsplit/config.toml"
		}
		return fmt.Errorf("catalogue.base_url is required. Edit %s (create with 'reelsplit config init')", defaultPath)
	}
	if c.Catalogue.RetryAttempts < 1 {
		return errors.New("catalogue.retry_attempts must be at least 1")
	}
	return nil
}

func (c *Config) validateSplitting() error {
	if c.Splitting.HandleFrames < 0 {
		return errors.New("splitting.handle_frames must not be negative")
	}
	if c.Splitting.DefaultFrameRate <= 0 {
		return errors.New("splitting.default_frame_rate must be positive")
	}
	if len(c.Splitting.Extensions) == 0 {
		return errors.New("splitting.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
