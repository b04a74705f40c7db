package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wildguard/wildguard-go/cmd/config"
	"github.com/wildguard/wildguard-go/cmd/serve"
	"github.com/wildguard/wildguard-go/cmd/summary"
	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wildguard",
		Short: "WildGuard threat intelligence engine CLI",
	}

	setupFlags(rootCmd, settings)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		summary.Command(settings),
		config.Command(settings),
	)

	return rootCmd
}

// setupFlags defines global flags shared by all subcommands and binds them
// to viper so command-line arguments take precedence over the config file.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "HTTP API port")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		cobra.CheckErr(err)
	}
}
