package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hankstank/mlb-data/internal/model"
)

// AL and NL league ids in the StatsAPI.
const leagueIDs = "103,104"

// GetStandings fetches final division standings for a season, one row
// per team record keyed by team id.
func (c *Client) GetStandings(ctx context.Context, season int) ([]model.Row, error) {
	query := url.Values{}
	query.Set("season", strconv.Itoa(season))
	query.Set("leagueId", leagueIDs)

	var resp standingsResponse
	if err := c.get(ctx, "/standings", query, &resp); err != nil {
		return nil, fmt.Errorf("get standings: %w", err)
	}

	var rows []model.Row
	for _, div := range resp.Records {
		for _, raw := range div.TeamRecords {
			var key teamSplitKey
			if err := json.Unmarshal(raw, &key); err != nil {
				return nil, fmt.Errorf("decode standings key: %w", err)
			}
			rows = append(rows, model.Row{
				NaturalKey: strconv.Itoa(key.Team.ID),
				Payload:    raw,
			})
		}
	}
	return rows, nil
}
