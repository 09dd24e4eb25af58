package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/vizdeploy/internal/fileversion"
	"github.com/conn-castle/vizdeploy/internal/messages"
)

var readVersion = fileversion.Read

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.InspectUse,
		Short: messages.InspectShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := false
			for _, path := range args {
				v, err := readVersion(path)
				if err != nil {
					failed = true
					_, _ = fmt.Fprintf(out, messages.InspectFailFmt, path, err)
					continue
				}
				_, _ = fmt.Fprintf(out, messages.InspectLineFmt, path, v)
			}
			if failed {
				return &SilentExitError{Code: 1}
			}
			return nil
		},
	}
}
