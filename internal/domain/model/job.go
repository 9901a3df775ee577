package model

import "time"

// Job is a request to recompute ratings for one season.
type Job struct {
	ID         string    // idempotency key
	Season     string    // e.g. "2025-26"
	SeasonType string    // e.g. "Regular Season"
	Reason     string    // "startup", "api", "watch", "cli"
	Requested  time.Time // enqueue time
}

// Key identifies the season a job targets.
func (j Job) Key() string {
	return j.Season + "|" + j.SeasonType
}
