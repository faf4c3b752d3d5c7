package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/loadmon/internal/domain/model"
)

// MemoryStore is an immutable in-memory Store. Rows are cloned on the way
// in and on the way out so callers never share slices with the index.
type MemoryStore struct {
	rows     []model.DailyRow
	byPlayer map[string][]int
	byDate   map[string][]int
	players  []string
	latest   time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore indexes rows by player and by date.
func NewMemoryStore(rows []model.DailyRow) *MemoryStore {
	s := &MemoryStore{
		rows:     model.SortDaily(rows),
		byPlayer: make(map[string][]int),
		byDate:   make(map[string][]int),
	}
	for i, r := range s.rows {
		if _, ok := s.byPlayer[r.PlayerID]; !ok {
			s.players = append(s.players, r.PlayerID)
		}
		s.byPlayer[r.PlayerID] = append(s.byPlayer[r.PlayerID], i)
		d := model.FormatDate(r.Date)
		s.byDate[d] = append(s.byDate[d], i)
		if r.Date.After(s.latest) {
			s.latest = r.Date
		}
	}
	return s
}

// LatestDate implements Store.
func (s *MemoryStore) LatestDate(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if len(s.rows) == 0 {
		return time.Time{}, ErrEmpty
	}
	return s.latest, nil
}

// OnDate implements Store.
func (s *MemoryStore) OnDate(ctx context.Context, date time.Time) ([]model.DailyRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.collect(s.byDate[model.FormatDate(date)], nil), nil
}

// PlayerHistory implements Store.
func (s *MemoryStore) PlayerHistory(ctx context.Context, playerID string, from, to time.Time) ([]model.DailyRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, ok := s.byPlayer[playerID]
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	lo, hi := model.Day(from), model.Day(to)
	return s.collect(idx, func(r model.DailyRow) bool {
		return !r.Date.Before(lo) && !r.Date.After(hi)
	}), nil
}

// AsOf implements Store.
func (s *MemoryStore) AsOf(ctx context.Context, playerID string, date time.Time) (model.DailyRow, error) {
	if err := ctx.Err(); err != nil {
		return model.DailyRow{}, err
	}
	idx := s.byPlayer[playerID]
	day := model.Day(date)
	// idx is date-ascending; find the first row after day.
	k := sort.Search(len(idx), func(k int) bool { return s.rows[idx[k]].Date.After(day) })
	if k == 0 {
		return model.DailyRow{}, fmt.Errorf("player %s on or before %s: %w", playerID, model.FormatDate(day), ErrNotFound)
	}
	return s.rows[idx[k-1]].Clone(), nil
}

// Rank implements Store.
func (s *MemoryStore) Rank(ctx context.Context, date time.Time, column string, order Order) ([]Entry, error) {
	rows, err := s.OnDate(ctx, date)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(rows))
	for i, r := range rows {
		v, ok := r.Value(column)
		if !ok {
			return nil, fmt.Errorf("rank by %q: %w", column, model.ErrUnsupportedOption)
		}
		entries[i] = Entry{Value: v, Row: r}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return before(entries[i], entries[j], order)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Players implements Store.
func (s *MemoryStore) Players(_ context.Context) []string {
	out := make([]string, len(s.players))
	copy(out, s.players)
	return out
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(s.rows)
}

func (s *MemoryStore) collect(idx []int, keep func(model.DailyRow) bool) []model.DailyRow {
	out := make([]model.DailyRow, 0, len(idx))
	for _, i := range idx {
		if keep == nil || keep(s.rows[i]) {
			out = append(out, s.rows[i].Clone())
		}
	}
	return out
}

// before reports whether a ranks ahead of b: present values before missing
// ones, then by value in order, then by player_id ascending.
func before(a, b Entry, order Order) bool {
	switch {
	case a.Value == nil && b.Value == nil:
		return a.Row.PlayerID < b.Row.PlayerID
	case a.Value == nil:
		return false
	case b.Value == nil:
		return true
	}
	if *a.Value != *b.Value {
		if order == Ascending {
			return *a.Value < *b.Value
		}
		return *a.Value > *b.Value
	}
	return a.Row.PlayerID < b.Row.PlayerID
}
