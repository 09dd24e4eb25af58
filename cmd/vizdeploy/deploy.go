package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conn-castle/vizdeploy/internal/config"
	"github.com/conn-castle/vizdeploy/internal/deploy"
	"github.com/conn-castle/vizdeploy/internal/lockfile"
	"github.com/conn-castle/vizdeploy/internal/messages"
	"github.com/conn-castle/vizdeploy/internal/report"
)

// newDeployerFunc builds the deployer for a session; tests swap the filesystem.
var newDeployerFunc = newDeployer

func newDeployCmd(opts *rootOptions) *cobra.Command {
	var strict bool
	var createDir bool
	var format string

	cmd := &cobra.Command{
		Use:   messages.DeployUse,
		Short: messages.DeployShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			sess, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = sess.logger.Sync() }()

			mode, err := deploy.ParseMode(sess.cfg.Mode)
			if err != nil {
				return err
			}
			if strict {
				mode = deploy.ModeStrict
			}

			destDir, err := opts.destinationDir(sess.cfg)
			if err != nil {
				return finishDeploy(sess.logger, mode, err)
			}

			d := newDeployerFunc(sess, deployerSettings{
				mode:      mode,
				createDir: createDir || sess.cfg.CreateDestinationDir,
				destDir:   destDir,
			})
			summary, runErr := d.Run(cmd.Context(), deploy.Batch{
				Files:          sess.cfg.Files,
				SourceDir:      sess.sourceDir,
				DestinationDir: destDir,
			})
			if err := report.Write(cmd.OutOrStdout(), summary, outFormat); err != nil {
				return err
			}
			if runErr != nil && mode == deploy.ModeStrict {
				return &SilentExitError{Code: 1}
			}
			return finishDeploy(sess.logger, mode, runErr)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, messages.DeployFlagStrict)
	cmd.Flags().BoolVar(&createDir, "create-dir", false, messages.DeployFlagCreateDir)
	cmd.Flags().StringVar(&format, "format", string(report.FormatText), messages.DeployFlagFormat)
	return cmd
}

// finishDeploy maps a deploy failure to the process result for mode.
// Baseline runs always report success to the host and keep the failure in the debug log.
func finishDeploy(logger *zap.Logger, mode deploy.Mode, err error) error {
	if err == nil {
		return nil
	}
	if mode == deploy.ModeBaseline {
		fields := []zap.Field{zap.Error(err), zap.Int("failures", len(deploy.Errors(err)))}
		if first, ok := deploy.FirstFailure(err); ok {
			fields = append(fields, zap.String("reason", string(first.Reason)), zap.String("path", first.Path))
		}
		logger.Debug(messages.DeployBaselineIgnored, fields...)
		return nil
	}
	return err
}

// deployerSettings are the per-command choices layered over the config.
type deployerSettings struct {
	mode      deploy.Mode
	createDir bool
	dryRun    bool
	destDir   string
}

// newDeployer wires the session config into a deploy.Deployer.
func newDeployer(sess *session, s deployerSettings) *deploy.Deployer {
	return deploy.New(deployOptions(sess.cfg, sess.logger, s))
}

func deployOptions(cfg *config.Config, logger *zap.Logger, s deployerSettings) deploy.Options {
	opts := deploy.Options{
		Mode:                 s.mode,
		Logger:               logger,
		CreateDestinationDir: s.createDir,
		DryRun:               s.dryRun,
		RenameAttempts:       uint64(cfg.Retry.Attempts),
		RenameDelay:          cfg.RenameDelay(),
	}
	if cfg.Lock.Enabled && !s.dryRun {
		path := lockfile.PathFor(s.destDir)
		timeout := cfg.LockTimeout()
		opts.Lock = func(fn func() error) error {
			return lockfile.With(path, timeout, fn)
		}
	}
	return opts
}
