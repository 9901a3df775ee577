// Package repository holds the in-memory rankings boards served by the API.
package repository

import "context"

// Entry represents a leaderboard row.
type Entry struct {
	Rank  int
	ID    string
	Name  string
	Score float64
}

// Store provides read/write access to one rankings board.
type Store interface {
	// Replace swaps the whole board for entries. Duplicate ids keep the
	// last entry.
	Replace(ctx context.Context, entries []Entry) error

	// Rank returns the current rank and score for an id.
	// Returns ErrNotFound if the id is unknown.
	Rank(ctx context.Context, id string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of entries on the board.
	Count(ctx context.Context) int
}
