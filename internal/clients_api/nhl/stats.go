package nhl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"goalie-chart/internal/domain/goalies"
	"goalie-chart/internal/infra/log"

	"go.uber.org/zap"
)

// ErrUnexpectedFormat - the response has no "data" array
var ErrUnexpectedFormat = errors.New("unexpected goalie summary format")

const savePctSort = `[{"property":"savePct","direction":"DESC"}]`

// GoalieQuery selects the season and filters for the summary report.
type GoalieQuery struct {
	Season   string // 20242025
	GameType int    // 2 = regular season, 3 = playoffs
	MinGames int
	Start    int
	Limit    int
}

// DefaultGoalieQuery is the 2024-25 regular season, 19+ games, top 50 by save pct.
func DefaultGoalieQuery() GoalieQuery {
	return GoalieQuery{Season: "20242025", GameType: 2, MinGames: 19, Limit: 50}
}

// Values builds the query string understood by the stats API.
func (q GoalieQuery) Values() url.Values {
	params := url.Values{}
	params.Set("isAggregate", "false")
	params.Set("isGame", "false")
	params.Set("sort", savePctSort)
	params.Set("start", strconv.Itoa(q.Start))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("factCayenneExp", fmt.Sprintf("gamesPlayed>=%d", q.MinGames))
	params.Set("cayenneExp", fmt.Sprintf("gameTypeId=%d and seasonId=%s", q.GameType, q.Season))
	return params
}

// GoalieRow - one row of the goalie summary report
type GoalieRow struct {
	PlayerID            int      `json:"playerId"`
	GoalieFullName      string   `json:"goalieFullName"`
	LastName            string   `json:"lastName"`
	GamesPlayed         int      `json:"gamesPlayed"`
	GamesStarted        int      `json:"gamesStarted"`
	Wins                int      `json:"wins"`
	Losses              int      `json:"losses"`
	ShutOuts            int      `json:"shutouts"`
	Saves               int      `json:"saves"`
	ShotsAgainst        int      `json:"shotsAgainst"`
	GoalsAgainst        int      `json:"goalsAgainst"`
	GoalsAgainstAverage *float64 `json:"goalsAgainstAverage"`
	SavePct             *float64 `json:"savePct"`
	SeasonID            int      `json:"seasonId"`
	TeamAbbrevs         string   `json:"teamAbbrevs"`
}

// GoalieSummary - API response
type GoalieSummary struct {
	Data  []GoalieRow `json:"data"`
	Total int         `json:"total"`
}

// Records maps rows to chart records; rows without a save percentage are dropped.
func (s *GoalieSummary) Records() []goalies.Record {
	records := make([]goalies.Record, 0, len(s.Data))
	for _, row := range s.Data {
		if row.SavePct == nil {
			log.LogDebug("Skipping goalie without save percentage", zap.String("goalie", row.GoalieFullName))
			continue
		}
		records = append(records, goalies.New(row.GoalieFullName, row.GamesPlayed, *row.SavePct, row.TeamAbbrevs))
	}
	return records
}

// GoalieSummary issues one GET to the stats API.
func (c *Client) GoalieSummary(ctx context.Context, q GoalieQuery) (*GoalieSummary, error) {
	endpoint := c.statsURL + "?" + q.Values().Encode()

	body, err := c.Get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, fmt.Errorf("failed to get goalie summary: %w", err)
	}
	log.LogJSON(body, "Goalie summary response")

	return ParseGoalieSummary(body)
}

// ParseGoalieSummary decodes a stats API payload.
func ParseGoalieSummary(body []byte) (*GoalieSummary, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode goalie summary: %w", err)
	}
	if _, ok := raw["data"]; !ok {
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		log.LogWarn("Goalie summary has no data field", zap.Strings("keys", keys))
		return nil, ErrUnexpectedFormat
	}

	var summary GoalieSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode goalie summary: %w", err)
	}
	return &summary, nil
}
