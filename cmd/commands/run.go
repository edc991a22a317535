package commands

import (
	"context"

	"goalie-chart/internal/app"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download, convert and chart in one go",
	RunE: withApp("run", func(ctx context.Context, a *app.App) error {
		return a.Run(ctx)
	}),
}
