package model

import "fmt"

// EntityType identifies a logical dataset. The set is closed: requests
// carrying an unknown entity type are rejected at the edge instead of
// falling through string switches at runtime.
type EntityType string

const (
	EntityTeams       EntityType = "teams"
	EntityTeamStats   EntityType = "team-stats"
	EntityStandings   EntityType = "standings"
	EntitySchedule    EntityType = "schedule"
	EntityPlayerStats EntityType = "player-stats"
	EntityRoster      EntityType = "roster"
)

// AllEntityTypes lists every known entity type.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityTeams,
		EntityTeamStats,
		EntityStandings,
		EntitySchedule,
		EntityPlayerStats,
		EntityRoster,
	}
}

// MirroredEntityTypes lists the entity types persisted in the historical
// store. Rosters are live-only: they change daily and have no season-scoped
// reporting table.
func MirroredEntityTypes() []EntityType {
	return []EntityType{
		EntityTeams,
		EntityTeamStats,
		EntityStandings,
		EntitySchedule,
		EntityPlayerStats,
	}
}

// ParseEntityType validates a raw string against the closed set.
func ParseEntityType(s string) (EntityType, error) {
	e := EntityType(s)
	if !e.Valid() {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return e, nil
}

// Valid reports whether e is a member of the closed set.
func (e EntityType) Valid() bool {
	switch e {
	case EntityTeams, EntityTeamStats, EntityStandings, EntitySchedule, EntityPlayerStats, EntityRoster:
		return true
	}
	return false
}

// Mirrored reports whether e has a table in the historical store.
func (e EntityType) Mirrored() bool {
	switch e {
	case EntityTeams, EntityTeamStats, EntityStandings, EntitySchedule, EntityPlayerStats:
		return true
	}
	return false
}

func (e EntityType) String() string {
	return string(e)
}
