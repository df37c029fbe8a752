package config

const (
	defaultConfigPath        = "~/.config/transcriptor/config.toml"
	defaultOutputDir         = "."
	defaultCaptionsBaseURL   = "https://www.youtube.com"
	defaultCaptionsUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultCaptionsTimeout   = 30
	defaultCaptionsRetries   = 3
	defaultYtDlpBinary       = "yt-dlp"
	defaultYtDlpTimeout      = 120
	defaultBatchDelaySeconds = 1.0
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultServiceName       = "transcriptor"
)

// DefaultLanguages is the English-variant preference list used when callers
// supply none.
var DefaultLanguages = []string{"en", "en-US", "en-GB"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir(),
		},
		Extraction: Extraction{
			Languages:         append([]string(nil), DefaultLanguages...),
			AllowFallback:     true,
			CacheEnabled:      true,
			BatchDelaySeconds: defaultBatchDelaySeconds,
		},
		Captions: Captions{
			BaseURL:        defaultCaptionsBaseURL,
			UserAgent:      defaultCaptionsUserAgent,
			TimeoutSeconds: defaultCaptionsTimeout,
			MaxRetries:     defaultCaptionsRetries,
		},
		YtDlp: YtDlp{
			Binary:         defaultYtDlpBinary,
			TimeoutSeconds: defaultYtDlpTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Tracing: Tracing{
			ServiceName: defaultServiceName,
		},
	}
}
