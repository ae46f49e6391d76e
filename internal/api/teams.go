package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hankstank/mlb-data/internal/model"
)

// GetTeams fetches every MLB team active in a season, one row per team
// keyed by team id.
func (c *Client) GetTeams(ctx context.Context, season int) ([]model.Row, error) {
	query := url.Values{}
	query.Set("season", strconv.Itoa(season))
	query.Set("sportId", "1")

	var resp teamsResponse
	if err := c.get(ctx, "/teams", query, &resp); err != nil {
		return nil, fmt.Errorf("get teams: %w", err)
	}

	rows := make([]model.Row, 0, len(resp.Teams))
	for _, raw := range resp.Teams {
		var key idKey
		if err := json.Unmarshal(raw, &key); err != nil {
			return nil, fmt.Errorf("decode team key: %w", err)
		}
		rows = append(rows, model.Row{
			NaturalKey: strconv.Itoa(key.ID),
			Payload:    raw,
		})
	}
	return rows, nil
}

// GetRoster fetches a team's roster for a season. Rosters are live-only;
// they are never written to the historical store.
func (c *Client) GetRoster(ctx context.Context, season int, teamID string) (model.Payload, error) {
	query := url.Values{}
	query.Set("season", strconv.Itoa(season))

	var resp rosterResponse
	if err := c.get(ctx, "/teams/"+url.PathEscape(teamID)+"/roster", query, &resp); err != nil {
		return nil, fmt.Errorf("get roster: %w", err)
	}

	return marshalList(resp.Roster)
}
