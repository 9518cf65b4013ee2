package commands

import (
	"fundrace/internal/app"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the normalized observations as Date,Fund,Value CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		path, err := app.New(cfg).Export(ctx)
		if err != nil {
			return err
		}
		cmd.Println(path)
		return nil
	},
}
