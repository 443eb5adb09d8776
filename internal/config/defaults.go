package config

const (
	defaultInputDir           = "~/dwfx"
	defaultOutputDir          = "~/pdf"
	defaultUploadDir          = "~/.local/share/dwfx2pdf/uploads"
	defaultLogDir             = "~/.local/share/dwfx2pdf/logs"
	defaultWorkers            = 4
	defaultPollIntervalMs     = 250
	defaultStabilityThreshold = 2
	defaultWebBind            = "127.0.0.1:8080"
	defaultNtfyRequestTimeout = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			UploadDir: defaultUploadDir,
			LogDir:    defaultLogDir,
		},
		Convert: Convert{
			Workers: defaultWorkers,
		},
		Watch: Watch{
			PollIntervalMs:     defaultPollIntervalMs,
			StabilityThreshold: defaultStabilityThreshold,
		},
		Web: Web{
			Bind: defaultWebBind,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
