package commands

import (
	"context"

	"goalie-chart/internal/app"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download every team's SVG logo",
	Long:  `Fetch the light SVG logo of every NHL team in parallel into logos.svg_dir. A failed team is logged and skipped.`,
	RunE: withApp("download", func(ctx context.Context, a *app.App) error {
		return a.DownloadLogos(ctx)
	}),
}
