package commands

import (
	"context"

	"goalie-chart/internal/app"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert downloaded SVG logos to JPG",
	Long:  `Rasterize every SVG in logos.svg_dir onto a white square and save it as JPG in logos.jpg_dir.`,
	RunE: withApp("convert", func(ctx context.Context, a *app.App) error {
		return a.ConvertLogos(ctx)
	}),
}
