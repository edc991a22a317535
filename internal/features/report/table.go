package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"goalie-chart/internal/domain/goalies"
)

// WriteTable prints the charted goalies as an aligned console table.
func WriteTable(w io.Writer, title string, records []goalies.Record) error {
	if title != "" {
		if _, err := fmt.Fprintf(w, "\n%s:\n", title); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Name\tTeam\tSave_Percentage\tGames_Played\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%d\t\n", r.Name, r.Teams, r.SavePct, r.GamesPlayed)
	}
	return tw.Flush()
}
