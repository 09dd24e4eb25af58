package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conn-castle/vizdeploy/internal/config"
	"github.com/conn-castle/vizdeploy/internal/hostdir"
	"github.com/conn-castle/vizdeploy/internal/logging"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

var (
	executableDirFunc = config.ExecutableDir
	getenvFunc        = os.Getenv
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	hostDir    string
	sourceDir  string
	logLevel   string
}

// session is the resolved configuration for one command invocation.
type session struct {
	cfg         *config.Config
	configPath  string
	configFound bool
	logger      *zap.Logger
	sourceDir   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolP("version", "v", false, messages.RootVersionFlag)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", messages.RootFlagConfig)
	flags.StringVar(&opts.hostDir, "host-dir", "", messages.RootFlagHostDir)
	flags.StringVar(&opts.sourceDir, "source-dir", "", messages.RootFlagSourceDir)
	flags.StringVar(&opts.logLevel, "log-level", "", messages.RootFlagLogLevel)

	cmd.AddCommand(
		newDeployCmd(opts),
		newPlanCmd(opts),
		newInspectCmd(),
		newDoctorCmd(opts),
		newInitCmd(opts),
	)
	return cmd
}

// resolveConfigPath returns --config or vizdeploy.toml next to the executable.
func (o *rootOptions) resolveConfigPath() (string, error) {
	if path := strings.TrimSpace(o.configPath); path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return "", err
		}
		return filepath.Abs(expanded)
	}
	dir, err := executableDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.DefaultFileName), nil
}

// open loads the config, applies flag overrides and builds the logger.
func (o *rootOptions) open(stderr io.Writer) (*session, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, found, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if strings.TrimSpace(o.logLevel) != "" {
		level = o.logLevel
	}
	logger, err := logging.New(level, cfg.Log.Format, stderr)
	if err != nil {
		return nil, err
	}

	sourceDir, err := o.resolveSourceDir(cfg, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:         cfg,
		configPath:  path,
		configFound: found,
		logger:      logger,
		sourceDir:   sourceDir,
	}, nil
}

func (o *rootOptions) resolveSourceDir(cfg *config.Config, configDir string) (string, error) {
	if dir := strings.TrimSpace(o.sourceDir); dir != "" {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return "", err
		}
		return filepath.Abs(expanded)
	}
	exeDir, err := executableDirFunc()
	if err != nil {
		return "", err
	}
	return cfg.ResolveSourceDir(configDir, exeDir)
}

// hostOptions combines --host-dir with the config for hostdir.Resolve.
func (o *rootOptions) hostOptions(cfg *config.Config) hostdir.Options {
	explicit := strings.TrimSpace(o.hostDir)
	if explicit == "" {
		explicit = cfg.HostDir
	}
	return hostdir.Options{
		Explicit: explicit,
		Edition:  cfg.VSEdition,
		Getenv:   getenvFunc,
	}
}

// destinationDir resolves the Visualizers directory for the session.
func (o *rootOptions) destinationDir(cfg *config.Config) (string, error) {
	root, err := hostdir.Resolve(o.hostOptions(cfg))
	if err != nil {
		return "", err
	}
	return hostdir.DestinationDir(root, cfg.Subfolder)
}
