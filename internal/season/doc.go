// Package season owns the season calendar: which season is current,
// which seasons are closed, and the expected coverage range for the
// historical store. The clock is injected so rollover is testable.
package season
