package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hankstank/mlb-data/internal/model"
)

// GetTeamStats fetches season-aggregate team stats for every team. Both
// hitting and pitching splits are collected; the natural key is
// "<teamID>-<group>" so one season yields two rows per team.
func (c *Client) GetTeamStats(ctx context.Context, season int) ([]model.Row, error) {
	var rows []model.Row
	for _, group := range []StatGroup{GroupHitting, GroupPitching} {
		query := url.Values{}
		query.Set("season", strconv.Itoa(season))
		query.Set("sportId", "1")
		query.Set("stats", "season")
		query.Set("group", string(group))

		var resp statsResponse
		if err := c.get(ctx, "/teams/stats", query, &resp); err != nil {
			return nil, fmt.Errorf("get team stats (%s): %w", group, err)
		}

		for _, g := range resp.Stats {
			for _, raw := range g.Splits {
				var key teamSplitKey
				if err := json.Unmarshal(raw, &key); err != nil {
					return nil, fmt.Errorf("decode team stat key: %w", err)
				}
				rows = append(rows, model.Row{
					NaturalKey: fmt.Sprintf("%d-%s", key.Team.ID, group),
					Payload:    raw,
				})
			}
		}
	}
	return rows, nil
}

// GetPlayerStats fetches season-aggregate player stats for qualified
// players, keyed "<playerID>-<group>".
func (c *Client) GetPlayerStats(ctx context.Context, season int) ([]model.Row, error) {
	var rows []model.Row
	for _, group := range []StatGroup{GroupHitting, GroupPitching} {
		query := url.Values{}
		query.Set("season", strconv.Itoa(season))
		query.Set("sportId", "1")
		query.Set("stats", "season")
		query.Set("group", string(group))
		query.Set("playerPool", "qualified")

		var resp statsResponse
		if err := c.get(ctx, "/stats", query, &resp); err != nil {
			return nil, fmt.Errorf("get player stats (%s): %w", group, err)
		}

		for _, g := range resp.Stats {
			for _, raw := range g.Splits {
				var key playerSplitKey
				if err := json.Unmarshal(raw, &key); err != nil {
					return nil, fmt.Errorf("decode player stat key: %w", err)
				}
				rows = append(rows, model.Row{
					NaturalKey: fmt.Sprintf("%d-%s", key.Player.ID, group),
					Payload:    raw,
				})
			}
		}
	}
	return rows, nil
}
