package api

import "encoding/json"

// Wire envelopes. Record payloads stay raw; only the fields needed to
// extract natural keys get decoded.

// teamsResponse from GET /teams
type teamsResponse struct {
	Teams []json.RawMessage `json:"teams"`
}

// statsResponse from GET /teams/stats and GET /stats
type statsResponse struct {
	Stats []statGroup `json:"stats"`
}

type statGroup struct {
	Splits []json.RawMessage `json:"splits"`
}

// standingsResponse from GET /standings
type standingsResponse struct {
	Records []divisionRecords `json:"records"`
}

type divisionRecords struct {
	TeamRecords []json.RawMessage `json:"teamRecords"`
}

// scheduleResponse from GET /schedule
type scheduleResponse struct {
	Dates []scheduleDate `json:"dates"`
}

type scheduleDate struct {
	Games []json.RawMessage `json:"games"`
}

// rosterResponse from GET /teams/{id}/roster
type rosterResponse struct {
	Roster []json.RawMessage `json:"roster"`
}

// Key extractors, decoded per record.

type teamRef struct {
	ID int `json:"id"`
}

type personRef struct {
	ID int `json:"id"`
}

type idKey struct {
	ID int `json:"id"`
}

type teamSplitKey struct {
	Team teamRef `json:"team"`
}

type playerSplitKey struct {
	Player personRef `json:"player"`
}

type gameKey struct {
	GamePk int64 `json:"gamePk"`
}

// StatGroup names a StatsAPI stat grouping.
type StatGroup string

const (
	GroupHitting  StatGroup = "hitting"
	GroupPitching StatGroup = "pitching"
)
