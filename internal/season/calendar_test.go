package season

import (
	"testing"
	"time"
)

func fixedNow(year int, month time.Month) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestCurrent(t *testing.T) {
	tests := []struct {
		name     string
		rollover time.Month
		year     int
		month    time.Month
		want     int
	}{
		{"january rollover tracks calendar year", time.January, 2025, 6, 2025},
		{"january rollover in january", time.January, 2025, 1, 2025},
		{"march rollover before opening day", time.March, 2025, 2, 2024},
		{"march rollover after opening day", time.March, 2025, 4, 2025},
		{"march rollover exactly in march", time.March, 2025, 3, 2025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Calendar{First: 2015, Rollover: tt.rollover, Now: fixedNow(tt.year, tt.month)}
			if got := c.Current(); got != tt.want {
				t.Errorf("Current() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClosed(t *testing.T) {
	c := Calendar{First: 2015, Rollover: time.January, Now: fixedNow(2025, time.June)}

	tests := []struct {
		season int
		want   bool
	}{
		{2014, false}, // before first mirrored season
		{2015, true},
		{2020, true},
		{2024, true},
		{2025, false}, // current, still mutable
		{2026, false}, // future
	}

	for _, tt := range tests {
		if got := c.Closed(tt.season); got != tt.want {
			t.Errorf("Closed(%d) = %v, want %v", tt.season, got, tt.want)
		}
	}
}

func TestClosedAfterRollover(t *testing.T) {
	c := Calendar{First: 2015, Rollover: time.January, Now: fixedNow(2025, time.June)}
	if c.Closed(2025) {
		t.Fatal("2025 should not be closed while current")
	}

	c.Now = fixedNow(2026, time.June)
	if !c.Closed(2025) {
		t.Fatal("2025 should be closed after rollover to 2026")
	}
}

func TestExpected(t *testing.T) {
	c := Calendar{First: 2015, Rollover: time.January, Now: fixedNow(2018, time.June)}

	want := []int{2015, 2016, 2017}
	got := c.Expected()
	if len(got) != len(want) {
		t.Fatalf("Expected() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestExpectedEmptyAtFirstSeason(t *testing.T) {
	c := Calendar{First: 2025, Rollover: time.January, Now: fixedNow(2025, time.June)}
	if got := c.Expected(); len(got) != 0 {
		t.Errorf("Expected() = %v, want empty", got)
	}
}
