// Package types contains the serialized shapes shared by the API, the
// archive, and the CLI.
package types

import (
	"math"
	"time"
)

// Kind identifies a leaderboard.
type Kind string

const (
	KindPlayers Kind = "players"
	KindTeams   Kind = "teams"
)

// Entry represents a leaderboard entry.
type Entry struct {
	Rank      int     `json:"rank"`
	SubjectID string  `json:"subject_id"`
	Name      string  `json:"name,omitempty"`
	Score     float64 `json:"score"`
}

// Round1 rounds to one decimal place.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Round1Ptr rounds a nullable value to one decimal place.
func Round1Ptr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	r := Round1(*f)
	return &r
}

// ISODate formats a calendar date.
func ISODate(t time.Time) string {
	return t.Format(time.DateOnly)
}
