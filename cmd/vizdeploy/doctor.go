package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/vizdeploy/internal/doctor"
	"github.com/conn-castle/vizdeploy/internal/hostdir"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

var (
	checkConfig      = doctor.CheckConfig
	checkHostDir     = doctor.CheckHostDir
	checkDestination = doctor.CheckDestination
	checkSources     = doctor.CheckSources
	checkInstalled   = doctor.CheckInstalled
)

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DoctorUse,
		Short: messages.DoctorShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			configPath, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, messages.DoctorHealthCheckFmt, configPath)

			// 1. Config
			allResults, cfg := checkConfig(configPath)

			if cfg != nil {
				// 2. Host directory and destination
				hostResults, root := checkHostDir(opts.hostOptions(cfg))
				allResults = append(allResults, hostResults...)
				destDir := ""
				if root != "" {
					if dir, err := hostdir.DestinationDir(root, cfg.Subfolder); err == nil {
						destDir = dir
						allResults = append(allResults, checkDestination(destDir, cfg.CreateDestinationDir)...)
					}
				}

				// 3. Bundled files and installed copies
				sourceDir, err := opts.resolveSourceDir(cfg, filepath.Dir(configPath))
				if err != nil {
					return err
				}
				allResults = append(allResults, checkSources(sourceDir, cfg.Files)...)
				if destDir != "" {
					allResults = append(allResults, checkInstalled(sourceDir, destDir, cfg.Files)...)
				}
			}

			for _, r := range allResults {
				printResult(out, r)
			}
			_, _ = fmt.Fprintln(out)
			if doctor.HasFailure(allResults) {
				_, _ = fmt.Fprintln(out, color.RedString(messages.DoctorFailureSummary))
				return errors.New(messages.DoctorFailureError)
			}
			_, _ = fmt.Fprintln(out, color.GreenString(messages.DoctorSuccessSummary))
			return nil
		},
	}
}

func printResult(out io.Writer, r doctor.Result) {
	var status string
	switch r.Status {
	case doctor.StatusOK:
		status = color.GreenString(messages.DoctorStatusOKLabel)
	case doctor.StatusWarn:
		status = color.YellowString(messages.DoctorStatusWarnLabel)
	case doctor.StatusFail:
		status = color.RedString(messages.DoctorStatusFailLabel)
	}

	_, _ = fmt.Fprintf(out, messages.DoctorResultLineFmt, status, r.CheckName, r.Message)
	if r.Recommendation != "" {
		printRecommendation(out, r.Recommendation)
	}
}

// printRecommendation renders a multi-line recommendation with consistent indentation.
func printRecommendation(out io.Writer, recommendation string) {
	for i, line := range strings.Split(recommendation, "\n") {
		switch {
		case i == 0:
			_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationPrefix, line)
		case line == "":
			_, _ = fmt.Fprintf(out, "%s\n", messages.DoctorRecommendationIndent)
		default:
			_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationIndent, line)
		}
	}
}
