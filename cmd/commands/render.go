package commands

import (
	"fundrace/internal/app"
	logging "fundrace/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the racing bar chart",
	Long: `Render the racing bar chart. By default writes a self-contained HTML page
with play/pause and a date slider; with --gif rasterizes every frame and writes
a looping GIF, which is also sent to Telegram when a bot token and chat ids are set.`,
	Example: `  fundrace render -i rwa-asset-timeseries-export.csv --open
  fundrace render --gif --gif-file out/rwa_growth_animation.gif --workers 8`,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	res, err := app.Run(ctx, cfg)
	if err != nil {
		return err
	}

	logging.LogSuccess("Animation ready",
		zap.String("run_id", res.RunID),
		zap.String("output", res.Output),
		zap.Int("frames", res.Frames),
		zap.Strings("funds", res.Entities),
		zap.Bool("published", res.Published))
	cmd.Println(res.Output)
	return nil
}
