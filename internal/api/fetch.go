package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hankstank/mlb-data/internal/model"
)

// FetchRows normalizes a whole season of one mirrored entity type into
// keyed rows, ready for the historical store.
func (c *Client) FetchRows(ctx context.Context, entity model.EntityType, season int) ([]model.Row, error) {
	switch entity {
	case model.EntityTeams:
		return c.GetTeams(ctx, season)
	case model.EntityTeamStats:
		return c.GetTeamStats(ctx, season)
	case model.EntityStandings:
		return c.GetStandings(ctx, season)
	case model.EntitySchedule:
		return c.GetSchedule(ctx, season)
	case model.EntityPlayerStats:
		return c.GetPlayerStats(ctx, season)
	default:
		return nil, fmt.Errorf("entity type %q has no season rows", entity)
	}
}

// Fetch resolves a single request against the live source. Season-wide
// requests come back as a JSON array of records, matching the shape the
// resolver assembles from historical rows.
func (c *Client) Fetch(ctx context.Context, req model.Request) (model.Payload, error) {
	if req.Entity == model.EntityRoster {
		if req.NaturalKey == "" {
			return nil, fmt.Errorf("roster request requires a team id: %w", model.ErrNotFound)
		}
		return c.GetRoster(ctx, req.Season, req.NaturalKey)
	}

	rows, err := c.FetchRows(ctx, req.Entity, req.Season)
	if err != nil {
		return nil, err
	}

	if req.NaturalKey != "" {
		rows = filterRows(rows, req.NaturalKey)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no live data for %s season %d: %w", req.Entity, req.Season, model.ErrNotFound)
	}

	payloads := make([]json.RawMessage, len(rows))
	for i, r := range rows {
		payloads[i] = r.Payload
	}
	return marshalList(payloads)
}

// filterRows keeps rows matching the natural key exactly, or as the id
// prefix of a compound "<id>-<group>" key.
func filterRows(rows []model.Row, key string) []model.Row {
	var out []model.Row
	for _, r := range rows {
		if r.NaturalKey == key || strings.HasPrefix(r.NaturalKey, key+"-") {
			out = append(out, r)
		}
	}
	return out
}

// marshalList joins raw records into a single JSON array without
// re-encoding the records themselves.
func marshalList(records []json.RawMessage) (model.Payload, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, raw := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')

	if !json.Valid(buf.Bytes()) {
		return nil, fmt.Errorf("assembled payload is not valid json")
	}
	return model.Payload(buf.Bytes()), nil
}
