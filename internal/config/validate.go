package config

import (
	"fmt"
	"strings"

	"github.com/conn-castle/vizdeploy/internal/deploy"
	"github.com/conn-castle/vizdeploy/internal/hostdir"
	"github.com/conn-castle/vizdeploy/internal/logging"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

const (
	maxRetryAttempts = 20
	maxRetryDelayMS  = 10000
)

// Validate ensures the config is complete and consistent.
func (c *Config) Validate(path string) error {
	if _, err := deploy.ParseMode(c.Mode); err != nil {
		return fmt.Errorf(messages.ConfigModeInvalidFmt, path)
	}
	if strings.TrimSpace(c.VSEdition) == "" {
		return fmt.Errorf(messages.ConfigEditionRequiredFmt, path)
	}
	if !hostdir.ValidSubfolder(strings.TrimSpace(c.Subfolder)) {
		return fmt.Errorf(messages.ConfigSubfolderInvalidFmt, path, c.Subfolder)
	}

	if len(c.Files) == 0 {
		return fmt.Errorf(messages.ConfigFilesEmptyFmt, path)
	}
	seen := make(map[string]struct{}, len(c.Files))
	for _, name := range c.Files {
		if !deploy.ValidFileName(name) {
			return fmt.Errorf(messages.ConfigFileNameInvalidFmt, path, name)
		}
		// The destination file system is case-insensitive.
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf(messages.ConfigFileDuplicateFmt, path, name)
		}
		seen[key] = struct{}{}
	}

	if c.Retry.Attempts < 1 || c.Retry.Attempts > maxRetryAttempts {
		return fmt.Errorf(messages.ConfigRetryAttemptsFmt, path)
	}
	if c.Retry.DelayMS < 1 || c.Retry.DelayMS > maxRetryDelayMS {
		return fmt.Errorf(messages.ConfigRetryDelayFmt, path)
	}
	if c.Lock.Enabled && c.Lock.TimeoutSeconds < 1 {
		return fmt.Errorf(messages.ConfigLockTimeoutFmt, path)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf(messages.ConfigLogLevelInvalidFmt, path)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf(messages.ConfigLogFormatInvalidFmt, path)
	}
	return nil
}
