package model

import "testing"

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		input   string
		want    EntityType
		wantErr bool
	}{
		{"team-stats", EntityTeamStats, false},
		{"standings", EntityStandings, false},
		{"roster", EntityRoster, false},
		{"teams", EntityTeams, false},
		{"schedule", EntitySchedule, false},
		{"player-stats", EntityPlayerStats, false},
		{"markets", "", true},
		{"", "", true},
		{"TEAM-STATS", "", true},
	}

	for _, tt := range tests {
		got, err := ParseEntityType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEntityType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEntityType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMirrored(t *testing.T) {
	for _, e := range MirroredEntityTypes() {
		if !e.Mirrored() {
			t.Errorf("%s should be mirrored", e)
		}
	}
	if EntityRoster.Mirrored() {
		t.Error("roster must not be mirrored")
	}
	if EntityType("bogus").Mirrored() {
		t.Error("unknown entity type must not be mirrored")
	}
}

func TestAllEntityTypesValid(t *testing.T) {
	for _, e := range AllEntityTypes() {
		if !e.Valid() {
			t.Errorf("%s should be valid", e)
		}
	}
}
