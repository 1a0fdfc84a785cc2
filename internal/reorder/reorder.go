// Package reorder adds drag-and-drop manual ordering on top of a list controller.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"backoffice/internal/apiclient"
	"backoffice/internal/listing"
	"backoffice/internal/utils"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoMove     = errors.New("reorder: item dropped on its own position")
	ErrOutOfRange = errors.New("reorder: index out of range")
	ErrNotLoaded  = errors.New("reorder: list is not loaded")
)

// Orderable is a row with an identity and a user-controlled rank.
type Orderable[T any] interface {
	Key() int64
	Rank() int64
	WithRank(rank int64) T
}

// Persist stores the new rank of one item.
type Persist func(ctx context.Context, id, rank int64) error

// ClientPersist persists through POST {resource}/{id}/reorder.
func ClientPersist(c *apiclient.Client, resource string) Persist {
	return func(ctx context.Context, id, rank int64) error {
		return c.Reorder(ctx, resource, id, rank)
	}
}

// Drop describes one accepted move.
type Drop struct {
	ID       int64 `json:"id"`
	OldIndex int   `json:"old_index"`
	NewIndex int   `json:"new_index"`
	Rank     int64 `json:"orders"`
}

// Options configures a Controller.
type Options struct {
	// OnDragStart is the feedback pulse fired when a drag begins.
	OnDragStart func(index int)
	Logger      *logrus.Entry
}

// Controller applies drag-and-drop moves to a loaded list and persists the new rank.
type Controller[T Orderable[T]] struct {
	list    *listing.Controller[T]
	persist Persist
	opts    Options
	mu      sync.Mutex
}

// New wraps list; persist stores the rank of a moved row.
func New[T Orderable[T]](list *listing.Controller[T], persist Persist, opts Options) *Controller[T] {
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(utils.Logger())
	}
	return &Controller[T]{list: list, persist: persist, opts: opts}
}

// List returns the wrapped list controller.
func (c *Controller[T]) List() *listing.Controller[T] {
	return c.list
}

// BeginDrag fires the drag feedback for a row that exists.
func (c *Controller[T]) BeginDrag(index int) bool {
	snap := c.list.Snapshot()
	if index < 0 || index >= len(snap.Rows) {
		return false
	}
	if c.opts.OnDragStart != nil {
		c.opts.OnDragStart(index)
	}
	return true
}

// Move drops the row at oldIndex onto newIndex. The new order is applied
// before the server confirms it. When persisting fails the list is reloaded
// from the server and the error is returned.
func (c *Controller[T]) Move(ctx context.Context, oldIndex, newIndex int) (Drop, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.list.Snapshot()
	if snap.State != listing.Loaded {
		return Drop{}, ErrNotLoaded
	}
	rows, rank, err := Plan(snap.Rows, oldIndex, newIndex)
	if err != nil {
		return Drop{}, err
	}
	moved := rows[newIndex]
	drop := Drop{ID: moved.Key(), OldIndex: oldIndex, NewIndex: newIndex, Rank: rank}

	rows[newIndex] = moved.WithRank(rank)
	c.list.Replace(rows)

	if err := c.persist(ctx, drop.ID, rank); err != nil {
		c.opts.Logger.WithFields(logrus.Fields{
			"id":        drop.ID,
			"old_index": oldIndex,
			"new_index": newIndex,
			"orders":    rank,
		}).WithError(err).Warn("reorder failed, reloading list")
		c.list.Reload()
		return drop, fmt.Errorf("reorder item %d: %w", drop.ID, err)
	}
	return drop, nil
}

// Plan computes the order after moving oldIndex to newIndex and the rank the
// moved item takes: the rank of the new second element when it lands first,
// otherwise the rank of its new predecessor. rows is not modified.
func Plan[T Orderable[T]](rows []T, oldIndex, newIndex int) ([]T, int64, error) {
	if oldIndex < 0 || oldIndex >= len(rows) || newIndex < 0 || newIndex >= len(rows) {
		return nil, 0, ErrOutOfRange
	}
	if oldIndex == newIndex {
		return nil, 0, ErrNoMove
	}
	out := ArrayMove(rows, oldIndex, newIndex)
	if newIndex == 0 {
		return out, out[1].Rank(), nil
	}
	return out, out[newIndex-1].Rank(), nil
}

// ArrayMove returns a copy of rows with the element at from removed and
// reinserted at to.
func ArrayMove[T any](rows []T, from, to int) []T {
	out := make([]T, 0, len(rows))
	out = append(out, rows[:from]...)
	out = append(out, rows[from+1:]...)
	item := rows[from]
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}
