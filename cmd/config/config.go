// Package config implements the config command, writing the effective
// configuration (defaults merged with any loaded file) out as YAML so a
// deployment can start from a complete, editable file.
package config

import (
	"github.com/spf13/cobra"

	"github.com/wildguard/wildguard-go/internal/conf"
)

// Command creates the config command.
func Command(settings *conf.Settings) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the effective configuration to a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.SaveAs(output); err != nil {
				return err
			}
			cmd.Printf("Configuration written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "config.yaml", "Destination path")

	return cmd
}
