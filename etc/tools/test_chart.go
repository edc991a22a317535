package main

import (
	"fmt"
	"os"
	"path/filepath"

	"goalie-chart/internal/clients_api/nhl"
	"goalie-chart/internal/features/charts"
	"goalie-chart/internal/features/logos"
	"goalie-chart/internal/infra/fs"

	"github.com/spf13/afero"
)

// go run etc/tools/test_chart.go
// renders data_out/goalie_summary.json (saved by the chart command) offline
// into etc/charts/test_chart.svg and .png, using Logos_JPG when present
func main() {
	fmt.Println("Generating test chart from snapshot...")

	osFs := afero.NewOsFs()
	var summary nhl.GoalieSummary
	if err := fs.LoadJSON(osFs, "data_out", fs.GoalieSummaryFile, &summary); err != nil {
		fmt.Printf("Error loading snapshot: %v\n", err)
		fmt.Println("Run `goalie-chart chart` once to create it.")
		os.Exit(1)
	}

	renderer := charts.NewRenderer(
		logos.NewRecolorer(fs.NewLogoStore(osFs, "Logos_JPG", "jpg")),
		charts.Options{Season: "20242025", MinGames: 19},
		nil,
	)
	svgPath := filepath.Join("etc", "charts", "test_chart.svg")
	layout, err := renderer.RenderFile(osFs, svgPath, summary.Records())
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}
	pngPath := charts.PreviewPath(svgPath)
	if err := charts.WritePNGFile(osFs, pngPath, layout); err != nil {
		fmt.Printf("Error generating preview: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Chart generated successfully: %s, %s (%d bars)\n", svgPath, pngPath, len(layout.Bars))
	fmt.Println("Open the file to see the result!")
}
