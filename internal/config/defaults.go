package config

const (
	defaultStoriesDir         = "~/.local/share/storyreel/stories"
	defaultBackgroundsDir     = "~/.local/share/storyreel/backgrounds"
	defaultOutputDir          = "~/.local/share/storyreel/output"
	defaultWorkDir            = "~/.local/share/storyreel/work"
	defaultLogDir             = "~/.local/share/storyreel/logs"
	defaultPiperBinary        = "piper"
	defaultPiperTimeout       = 600
	defaultMinCueSeconds      = 1.0
	defaultMaxCueSeconds      = 8.0
	defaultMaxChunkChars      = 100
	defaultFontSize           = 36
	defaultBottomMargin       = 50
	defaultWordsPerMinute     = 160.0
	defaultSegmentTarget      = 30.0
	defaultSegmentMin         = 3.0
	defaultNotifyTimeout      = 10
	defaultQueuePollInterval  = 5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StoriesDir:     defaultStoriesDir,
			BackgroundsDir: defaultBackgroundsDir,
			OutputDir:      defaultOutputDir,
			WorkDir:        defaultWorkDir,
			LogDir:         defaultLogDir,
		},
		Piper: Piper{
			Binary:         defaultPiperBinary,
			CUDAEnabled:    true,
			TimeoutSeconds: defaultPiperTimeout,
		},
		Captions: Captions{
			Enabled:       true,
			MinCueSeconds: defaultMinCueSeconds,
			MaxCueSeconds: defaultMaxCueSeconds,
			MaxChunkChars: defaultMaxChunkChars,
			FontSize:      defaultFontSize,
			BottomMargin:  defaultBottomMargin,
		},
		Preview: Preview{
			WordsPerMinute: defaultWordsPerMinute,
		},
		Segments: Segments{
			Enabled:       false,
			TargetSeconds: defaultSegmentTarget,
			MinSeconds:    defaultSegmentMin,
		},
		TextPrep: TextPrep{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Synthesis:      true,
			Render:         true,
			Segmenting:     true,
			Queue:          true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
