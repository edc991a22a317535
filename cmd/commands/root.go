package commands

// Root command for Cobra CLI
// Every subcommand shares the config flags registered here
// and runs against one app.App built from the resolved config

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"goalie-chart/internal/app"
	"goalie-chart/internal/infra/config"
	"goalie-chart/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "goalie-chart",
	Short: "NHL goalie save percentage chart",
	Long: `goalie-chart downloads NHL team logos, converts them to JPG, fetches the goalie
summary from the NHL stats API and renders the top goalies by save percentage
as an SVG bar chart with logo filled bars.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(runCmd)
}

// withApp loads the config, sets up logging and runs step with a context
// cancelled on SIGINT/SIGTERM.
func withApp(name string, step func(ctx context.Context, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		if err := log.Setup(cfg.App.LogsDir); err != nil {
			return err
		}
		defer log.Sync()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a := app.New(cfg)
		log.LogInfo("Starting "+name, zap.String("season", cfg.NHL.Season))

		err = step(ctx, a)
		if cerr := a.Close(); cerr != nil {
			log.LogWarn("Failed to write metrics", zap.Error(cerr))
		}
		if err != nil {
			log.LogError(name+" failed", zap.Error(err))
			return err
		}
		log.LogSuccess(name + " finished")
		return nil
	}
}
