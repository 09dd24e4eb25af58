package messages

// Config messages for configuration loading and validation.
const (
	// ConfigReadFmt formats config read failures.
	ConfigReadFmt             = "read config %s: %w"
	ConfigInvalidConfigFmt    = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt = "%s: unrecognized config keys: %w"
	ConfigValidationFailed    = "config validation failed"
	ConfigValidationGuidance  = "(run `vizdeploy init --force` to write a fresh default config)"
	ConfigTemplateReadFmt     = "read default config template: %w"
	ConfigWriteFmt            = "write config %s: %w"
	ConfigExecutableFmt       = "locate executable: %w"
	ConfigExpandPathFmt       = "%s: expand %s: %w"

	ConfigModeInvalidFmt      = "%s: mode must be one of baseline, strict"
	ConfigEditionRequiredFmt  = "%s: vs_edition is required"
	ConfigSubfolderInvalidFmt = "%s: subfolder %q must be a single directory name"
	ConfigFilesEmptyFmt       = "%s: files must list at least one file"
	ConfigFileNameInvalidFmt  = "%s: files entry %q must be a bare file name"
	ConfigFileDuplicateFmt    = "%s: files entry %q is listed more than once"
	ConfigRetryAttemptsFmt    = "%s: retry.attempts must be between 1 and 20"
	ConfigRetryDelayFmt       = "%s: retry.delay_ms must be between 1 and 10000"
	ConfigLockTimeoutFmt      = "%s: lock.timeout_seconds must be at least 1 when lock.enabled is true"
	ConfigLogLevelInvalidFmt  = "%s: log.level must be one of debug, info, warn, error"
	ConfigLogFormatInvalidFmt = "%s: log.format must be one of console, json"
)
