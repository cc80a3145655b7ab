package config

const (
	defaultProcessingDir      = "~/.local/share/reelsplit/processing"
	defaultSegmentedDir       = "~/.local/share/reelsplit/segmented"
	defaultLogDir             = "~/.local/share/reelsplit/logs"
	defaultCatalogueTimeout   = 30
	defaultCatalogueRetries   = 5
	defaultHandleFrames       = 25
	defaultFrameRate          = 25.0
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultQueuePollInterval  = 10
	defaultErrorRetryInterval = 30
)

func defaultExtensions() []string {
	return []string{"mkv", "mov", "mxf"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProcessingDir: defaultProcessingDir,
			SegmentedDir:  defaultSegmentedDir,
			LogDir:        defaultLogDir,
		},
		Catalogue: Catalogue{
			TimeoutSeconds: defaultCatalogueTimeout,
			RetryAttempts:  defaultCatalogueRetries,
		},
		Splitting: Splitting{
			HandleFrames:     defaultHandleFrames,
			DefaultFrameRate: defaultFrameRate,
			Extensions:       defaultExtensions(),
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
