package archive

import "errors"

// ErrNoRuns is returned when no run has been archived for a season.
var ErrNoRuns = errors.New("no archived runs")
