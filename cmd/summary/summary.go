// Package summary implements the summary command, printing the daily threat
// picture for ranger briefings.
package summary

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wildguard/wildguard-go/internal/conf"
	"github.com/wildguard/wildguard-go/internal/datastore"
	"github.com/wildguard/wildguard-go/internal/prediction"
)

// Command creates the summary command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print today's threat summary as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, settings)
		},
	}
}

func run(cmd *cobra.Command, settings *conf.Settings) error {
	ds, err := datastore.New(settings)
	if err != nil {
		return err
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer func() { _ = ds.Close() }()

	summary, err := prediction.NewService(settings, ds).DailySummary(time.Now())
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
