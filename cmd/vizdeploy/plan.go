package main

import (
	"github.com/spf13/cobra"

	"github.com/conn-castle/vizdeploy/internal/deploy"
	"github.com/conn-castle/vizdeploy/internal/messages"
	"github.com/conn-castle/vizdeploy/internal/report"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	var createDir bool

	cmd := &cobra.Command{
		Use:   messages.PlanUse,
		Short: messages.PlanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := opts.open(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = sess.logger.Sync() }()

			destDir, err := opts.destinationDir(sess.cfg)
			if err != nil {
				return err
			}
			// A plan evaluates every file, whatever mode the config selects.
			d := newDeployerFunc(sess, deployerSettings{
				mode:      deploy.ModeStrict,
				createDir: createDir || sess.cfg.CreateDestinationDir,
				dryRun:    true,
				destDir:   destDir,
			})
			summary, _ := d.Run(cmd.Context(), deploy.Batch{
				Files:          sess.cfg.Files,
				SourceDir:      sess.sourceDir,
				DestinationDir: destDir,
			})
			return report.WritePlan(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().BoolVar(&createDir, "create-dir", false, messages.DeployFlagCreateDir)
	return cmd
}
