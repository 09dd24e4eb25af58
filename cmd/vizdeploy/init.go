package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/conn-castle/vizdeploy/internal/config"
	"github.com/conn-castle/vizdeploy/internal/messages"
	"github.com/conn-castle/vizdeploy/internal/terminal"
)

var (
	isTerminal       = terminal.IsInteractive
	statConfigPath   = os.Stat
	writeDefaultFunc = config.WriteDefault
	confirmFunc      = confirmOverwrite
	runFormFunc      = func(form *huh.Form) error { return form.Run() }
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   messages.InitUse,
		Short: messages.InitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}
			info, err := statConfigPath(path)
			switch {
			case err == nil:
				if info.IsDir() {
					return fmt.Errorf(messages.InitPathIsDirFmt, path)
				}
				if !force {
					if !isTerminal() {
						return errors.New(messages.InitOverwriteRequiresTerminal)
					}
					ok, err := confirmFunc(path)
					if err != nil {
						return err
					}
					if !ok {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), messages.InitCancelled)
						return nil
					}
				}
			case !errors.Is(err, fs.ErrNotExist):
				return fmt.Errorf(messages.InitStatFmt, path, err)
			}

			if err := writeDefaultFunc(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.InitWroteFmt, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, messages.InitFlagForce)
	return cmd
}

// confirmOverwrite asks whether to replace the config at path. Esc and Ctrl+C decline.
func confirmOverwrite(path string) (bool, error) {
	var overwrite bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf(messages.InitOverwritePromptFmt, path)).
			Value(&overwrite),
	))
	form.WithProgramOptions(tea.WithOutput(os.Stderr))
	if err := runFormFunc(form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return overwrite, nil
}
