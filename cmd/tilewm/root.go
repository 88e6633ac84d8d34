package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tilewm",
		Short:         "A small tiling window manager for X11",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file path (default: ~/.config/tilewm/config.yaml)")

	cmd.AddCommand(
		newRunCmd(),
		newConfigCmd(),
	)

	return cmd
}
