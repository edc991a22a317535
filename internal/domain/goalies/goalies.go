package goalies

import (
	"sort"
	"strings"
)

// Record is one goalie row prepared for charting.
type Record struct {
	Name        string  `json:"name"`         // "C. Hellebuyck"
	GamesPlayed int     `json:"games_played"` // >= 0
	SavePct     float64 `json:"save_pct"`     // fraction in [0,1]
	Teams       string  `json:"teams"`        // raw comma separated list from the API
	CurrentTeam string  `json:"current_team"` // last entry of Teams
}

// New builds a Record from raw API values.
func New(fullName string, gamesPlayed int, savePct float64, teams string) Record {
	if gamesPlayed < 0 {
		gamesPlayed = 0
	}
	return Record{
		Name:        ShortName(fullName),
		GamesPlayed: gamesPlayed,
		SavePct:     savePct,
		Teams:       teams,
		CurrentTeam: CurrentTeam(teams),
	}
}

// ShortName turns "Connor Hellebuyck" into "C. Hellebuyck".
// A single token is returned unchanged.
func ShortName(fullName string) string {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	first := []rune(parts[0])
	return string(first[0]) + ". " + parts[len(parts)-1]
}

// CurrentTeam returns the last team of a comma separated list ("TOR, BOS" -> "BOS").
func CurrentTeam(teams string) string {
	parts := strings.Split(teams, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// SavePctPercent is the save percentage on a 0-100 scale.
func (r Record) SavePctPercent() float64 {
	return r.SavePct * 100
}

// Top returns the n records with the highest save percentage, best first.
// Fewer than n records are all returned. Ties go to more games played,
// then name, then input order.
func Top(records []Record, n int) []Record {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.SavePct != b.SavePct {
			return a.SavePct > b.SavePct
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		return a.Name < b.Name
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
