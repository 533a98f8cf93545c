package config

const (
	defaultConfigPath           = "~/.config/tagflow/config.toml"
	defaultDataDir              = "~/.local/share/tagflow"
	defaultLogDir               = "~/.local/share/tagflow/logs"
	defaultMusicRoot            = "~/music"
	defaultExportDir            = "~/.local/share/tagflow/exports"
	defaultAPIBind              = "127.0.0.1:7490"
	defaultTokenTTLSeconds      = 7 * 24 * 60 * 60
	defaultBcryptCost           = 10
	defaultBootstrapAdmin       = "admin"
	defaultQuestionDeletePolicy = QuestionDeleteAnyReference
	defaultPageSize             = 20
	defaultMaxPageSize          = 100
	defaultRateLimitPerSecond   = 20
	defaultRateLimitBurst       = 40
	defaultArchivePrefix        = "exports"
	defaultNotifyTimeoutSeconds = 10
	defaultProbeTimeoutSeconds  = 15
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Question delete policies accepted by workflow.question_delete_policy.
const (
	QuestionDeleteAnyReference    = "any_reference"
	QuestionDeleteActiveReference = "active_reference"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			MusicRoot: defaultMusicRoot,
			ExportDir: defaultExportDir,
			APIBind:   defaultAPIBind,
		},
		Auth: Auth{
			TokenTTLSeconds: defaultTokenTTLSeconds,
			BcryptCost:      defaultBcryptCost,
			BootstrapAdmin:  defaultBootstrapAdmin,
		},
		Workflow: Workflow{
			QuestionDeletePolicy: defaultQuestionDeletePolicy,
			DefaultPageSize:      defaultPageSize,
			MaxPageSize:          defaultMaxPageSize,
		},
		Server: Server{
			RateLimitPerSecond: defaultRateLimitPerSecond,
			RateLimitBurst:     defaultRateLimitBurst,
		},
		Library: Library{
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Archive: Archive{
			Prefix: defaultArchivePrefix,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
