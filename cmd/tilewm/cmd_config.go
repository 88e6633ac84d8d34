package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/tilewm/internal/config"
	"github.com/1broseidon/tilewm/internal/hotkeys"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(), newConfigPrintCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := validateBindings(res); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range res.Files {
				fmt.Fprintf(out, "loaded: %s\n", f)
			}
			fmt.Fprintln(out, "config: ok")
			return nil
		},
	}
}

func newConfigPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printDefaults, _ := cmd.Flags().GetBool("defaults")

			cfg := config.DefaultConfig()
			if !printDefaults {
				res, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				cfg = res.Config
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().Bool("defaults", false, "Print built-in defaults (no files)")
	return cmd
}

// loadConfig loads the file named by --config, or the default path.
func loadConfig(cmd *cobra.Command) (*config.LoadResult, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return config.LoadFromPath(path)
}

// validateBindings parses every binding the way run registers them. run
// skips bad bindings with a warning; validate rejects them.
func validateBindings(res *config.LoadResult) error {
	cfg := res.Config
	_, invalid := hotkeys.ResolveBindings(cfg.Bindings, cfg.Modifier, cfg.SortedBindings())
	if len(invalid) == 0 {
		return nil
	}

	keys := make([]string, 0, len(invalid))
	for key := range invalid {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	errs := make([]error, 0, len(keys))
	for _, key := range keys {
		path := "bindings." + key
		errs = append(errs, &config.ValidationError{
			Path:   path,
			Source: res.Lookup(path),
			Err:    invalid[key],
		})
	}
	return errors.Join(errs...)
}
