package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/vizdeploy/internal/messages"
	"github.com/conn-castle/vizdeploy/internal/templates"
)

// ErrConfigValidation is a sentinel that wraps config validation failures
// (as opposed to TOML syntax or filesystem errors).
var ErrConfigValidation = errors.New(messages.ConfigValidationFailed)

var executableFn = os.Executable

// ExecutableDir returns the directory holding the running binary.
func ExecutableDir() (string, error) {
	exe, err := executableFn()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExecutableFmt, err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Load reads and validates the config at path. A missing file yields Default
// and found=false; any other read error is returned.
func Load(path string) (cfg *Config, found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			d := Default()
			return &d, false, nil
		}
		return nil, false, fmt.Errorf(messages.ConfigReadFmt, path, err)
	}
	cfg, err = Parse(data, path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Parse decodes TOML data over the defaults and validates the result.
// Unknown keys are rejected. source is used in error messages.
func Parse(data []byte, source string) (*Config, error) {
	cfg := Default()
	// Keys present in data replace the default list wholesale.
	cfg.Files = nil
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return nil, fmt.Errorf("%w: "+messages.ConfigUnrecognizedKeysFmt+" "+messages.ConfigValidationGuidance, ErrConfigValidation, source, err)
		}
		return nil, fmt.Errorf(messages.ConfigInvalidConfigFmt, source, err)
	}
	if cfg.Files == nil {
		cfg.Files = Default().Files
	}
	if err := cfg.Validate(source); err != nil {
		return nil, fmt.Errorf("%w: %w "+messages.ConfigValidationGuidance, ErrConfigValidation, err)
	}
	return &cfg, nil
}

// Template returns the embedded default config file.
func Template() ([]byte, error) {
	data, err := templates.Read(DefaultFileName)
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigTemplateReadFmt, err)
	}
	return data, nil
}

// WriteDefault writes the default config template to path.
func WriteDefault(path string) error {
	data, err := Template()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ConfigWriteFmt, path, err)
	}
	return nil
}

// ResolveSourceDir returns the directory to deploy from. An empty source_dir
// means fallback; relative paths are joined to baseDir.
func (c Config) ResolveSourceDir(baseDir string, fallback string) (string, error) {
	dir := strings.TrimSpace(c.SourceDir)
	if dir == "" {
		return fallback, nil
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandPathFmt, "source_dir", dir, err)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(baseDir, expanded)
	}
	return filepath.Clean(expanded), nil
}
