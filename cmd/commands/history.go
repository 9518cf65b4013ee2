package commands

import (
	"fundrace/internal/app"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Render a static line chart of the top funds over time",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		path, err := app.New(cfg).History(ctx)
		if err != nil {
			return err
		}
		cmd.Println(path)
		return nil
	},
}
