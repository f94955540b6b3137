package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	internalconfig "github.com/smykla-skalski/enforcer/internal/config"
)

var (
	globalFlag bool
	forceFlag  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize enforcer configuration",
	Long: `Initialize an enforcer configuration file with the default policies.

By default, creates a project-local configuration file (.enforcer/config.toml).
Use --global or -g to create the global configuration file
($XDG_CONFIG_HOME/enforcer/config.toml).

Use --force to overwrite an existing configuration file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(
		&globalFlag,
		"global",
		"g",
		false,
		"Initialize global configuration",
	)

	initCmd.Flags().BoolVarP(
		&forceFlag,
		"force",
		"f",
		false,
		"Overwrite existing configuration file",
	)
}

func runInit(cmd *cobra.Command, _ []string) error {
	writer, err := internalconfig.NewWriter()
	if err != nil {
		return err
	}

	cfg := internalconfig.DefaultConfig()

	var path string

	if globalFlag {
		path, err = writer.WriteGlobal(cfg, forceFlag)
	} else {
		path, err = writer.WriteProject(cfg, forceFlag)
	}

	if err != nil {
		if errors.Is(err, internalconfig.ErrConfigExists) {
			return err
		}

		return errors.Wrap(err, "failed to write configuration")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)

	return nil
}
