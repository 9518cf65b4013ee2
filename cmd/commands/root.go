package commands

// Root command. Loads the layered config and starts logging before any
// subcommand runs; with no subcommand it renders the animation.

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fundrace/internal/config"
	logging "fundrace/internal/infra/log"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fundrace",
	Short: "Racing bar chart of tokenized fund asset values",
	Long: `fundrace reads an RWA asset time series export (CSV or XLSX), keeps the top
funds by peak value and renders one bar chart frame per date, either as an
interactive page with play/pause and a date slider or as a looping GIF.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { logging.Sync() },
	RunE:              runRender,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	loaded, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      flags,
	})
	if err != nil {
		return err
	}
	cfg = loaded

	return logging.Init(logging.Options{
		Dir:     cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Console: true,
	})
}

// signalContext is cancelled on Ctrl+C or SIGTERM so temp frames get cleaned up.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
