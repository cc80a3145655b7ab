package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalogue()
	c.normalizeSplitting()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ProcessingDir) == "" {
		c.Paths.ProcessingDir = defaultProcessingDir
	}
	if c.Paths.ProcessingDir, err = expandPath(c.Paths.ProcessingDir); err != nil {
		return fmt.Errorf("paths.processing_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SegmentedDir) == "" {
		c.Paths.SegmentedDir = defaultSegmentedDir
	}
	if c.Paths.SegmentedDir, err = expandPath(c.Paths.SegmentedDir); err != nil {
		return fmt.Errorf("paths.segmented_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ControlFile) != "" {
		if c.Paths.ControlFile, err = expandPath(c.Paths.ControlFile); err != nil {
			return fmt.Errorf("paths.control_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeCatalogue() {
	c.Catalogue.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalogue.BaseURL), "/")
	if c.Catalogue.APIKey == "" {
		if value, ok := os.LookupEnv("CATALOGUE_API_KEY"); ok {
			c.Catalogue.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Catalogue.TimeoutSeconds <= 0 {
		c.Catalogue.TimeoutSeconds = defaultCatalogueTimeout
	}
	if c.Catalogue.RetryAttempts <= 0 {
		c.Catalogue.RetryAttempts = defaultCatalogueRetries
	}
}

func (c *Config) normalizeSplitting() {
	if c.Splitting.DefaultFrameRate <= 0 {
		c.Splitting.DefaultFrameRate = defaultFrameRate
	}
	if len(c.Splitting.Extensions) == 0 {
		c.Splitting.Extensions = defaultExtensions()
	}
	cleaned := make([]string, 0, len(c.Splitting.Extensions))
	for _, ext := range c.Splitting.Extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			cleaned = append(cleaned, ext)
		}
	}
	c.Splitting.Extensions = cleaned
	c.Splitting.FFmpegBinary = strings.TrimSpace(c.Splitting.FFmpegBinary)
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
