package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hankstank/mlb-data/internal/model"
)

// GetSchedule fetches the full season schedule, one row per game keyed
// by gamePk.
func (c *Client) GetSchedule(ctx context.Context, season int) ([]model.Row, error) {
	query := url.Values{}
	query.Set("season", strconv.Itoa(season))
	query.Set("sportId", "1")

	var resp scheduleResponse
	if err := c.get(ctx, "/schedule", query, &resp); err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	var rows []model.Row
	for _, date := range resp.Dates {
		for _, raw := range date.Games {
			var key gameKey
			if err := json.Unmarshal(raw, &key); err != nil {
				return nil, fmt.Errorf("decode game key: %w", err)
			}
			rows = append(rows, model.Row{
				NaturalKey: strconv.FormatInt(key.GamePk, 10),
				Payload:    raw,
			})
		}
	}
	return rows, nil
}
