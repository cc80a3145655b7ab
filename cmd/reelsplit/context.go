package main

import (
	"fmt"
	"log/slog"

	"reelsplit/internal/carrier"
	"reelsplit/internal/catalogue"
	"reelsplit/internal/config"
	"reelsplit/internal/extract"
	"reelsplit/internal/logging"
	"reelsplit/internal/queue"
	"reelsplit/internal/workflow"
)

// commandContext shares lazily constructed collaborators between commands.
type commandContext struct {
	configFlag *string

	cfg    *config.Config
	logger *slog.Logger
	store  *queue.Store
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	c.logger = logger
	return logger, nil
}

func (c *commandContext) ensureStore() (*queue.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	c.store = store
	return store, nil
}

func (c *commandContext) closeStore() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func (c *commandContext) newLoader() (*carrier.Loader, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return carrier.NewLoader(cfg, catalogue.New(cfg), logger), nil
}

func (c *commandContext) newOrchestrator() (*workflow.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	ffmpeg := extract.NewFFmpeg(cfg.FFmpegBinary())
	extractor := extract.NewExtractor(ffmpeg, ffmpeg, logger)
	return workflow.NewOrchestrator(cfg, store, catalogue.New(cfg), extractor, logger), nil
}
