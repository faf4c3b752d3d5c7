// Package repository is the read-only index over a daily table used by the
// report and export collaborators.
package repository

import (
	"context"
	"time"

	"github.com/okian/loadmon/internal/domain/model"
)

// Order selects the ranking direction.
type Order int

// Ranking directions. Missing values always rank last.
const (
	Descending Order = iota
	Ascending
)

// Entry is one ranked row.
type Entry struct {
	Rank  int
	Value *float64
	Row   model.DailyRow
}

// Store provides read access to the daily table.
type Store interface {
	// LatestDate returns the most recent date in the table.
	// Returns ErrEmpty for an empty table.
	LatestDate(ctx context.Context) (time.Time, error)

	// OnDate returns the rows of date ordered by player_id.
	OnDate(ctx context.Context, date time.Time) ([]model.DailyRow, error)

	// PlayerHistory returns a player's rows with from <= date <= to, ascending.
	// Returns ErrNotFound if the player is unknown.
	PlayerHistory(ctx context.Context, playerID string, from, to time.Time) ([]model.DailyRow, error)

	// AsOf returns the player's row on date or the latest one before it.
	// Returns ErrNotFound when there is none.
	AsOf(ctx context.Context, playerID string, date time.Time) (model.DailyRow, error)

	// Rank orders the rows of date by column, ties broken by player_id.
	Rank(ctx context.Context, date time.Time, column string, order Order) ([]Entry, error)

	// Players returns the player ids in the table, ascending.
	Players(ctx context.Context) []string

	// Count returns the number of rows.
	Count(ctx context.Context) int
}
