package commands

import (
	"context"

	"goalie-chart/internal/app"

	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Fetch goalie stats and render the chart",
	Long: `Fetch the goalie summary from the NHL stats API, render the top goalies by save
percentage as SVG (plus a PNG preview), print them as a table and post the preview
to Telegram when TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are set.`,
	RunE: withApp("chart", func(ctx context.Context, a *app.App) error {
		return a.Chart(ctx)
	}),
}
