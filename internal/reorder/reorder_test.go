package reorder

import (
	"context"
	"errors"
	"sync"
	"testing"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groups() []models.ServiceGroup {
	return []models.ServiceGroup{
		{ID: 1, Name: "Hair", Orders: 10},
		{ID: 2, Name: "Nails", Orders: 20},
		{ID: 3, Name: "Spa", Orders: 30},
		{ID: 4, Name: "Makeup", Orders: 40},
		{ID: 5, Name: "Barber", Orders: 50},
	}
}

func ids(rows []models.ServiceGroup) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

type persistCall struct{ id, rank int64 }

type fakeServer struct {
	mu    sync.Mutex
	calls []persistCall
	err   error
}

func (s *fakeServer) persist(_ context.Context, id, rank int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, persistCall{id, rank})
	return s.err
}

func (s *fakeServer) fetch(_ context.Context, q domain.ListQuery) (domain.PageResult[models.ServiceGroup], error) {
	rows := groups()
	return domain.PageResult[models.ServiceGroup]{
		Data: rows,
		Meta: domain.PageMeta{CurrentPage: 1, LastPage: 1, PerPage: q.PerPage, Total: len(rows)},
	}, nil
}

func newController(t *testing.T, srv *fakeServer, opts Options) *Controller[models.ServiceGroup] {
	t.Helper()
	list := listing.New(srv.fetch, listing.Options[models.ServiceGroup]{})
	t.Cleanup(list.Close)
	list.Start(context.Background())
	list.Wait()
	return New(list, srv.persist, opts)
}

func TestPlanMoveToFrontTakesFormerFirstRank(t *testing.T) {
	rows, rank, err := Plan(groups(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2, 4, 5}, ids(rows))
	assert.Equal(t, int64(10), rank)
}

func TestPlanMoveDownTakesNewPredecessorRank(t *testing.T) {
	rows, rank, err := Plan(groups(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4, 2, 5}, ids(rows))
	assert.Equal(t, int64(40), rank)
}

func TestPlanRejectsNoMoveAndOutOfRange(t *testing.T) {
	src := groups()
	_, _, err := Plan(src, 2, 2)
	assert.ErrorIs(t, err, ErrNoMove)
	_, _, err = Plan(src, 0, 5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, _, err = Plan(src, -1, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, groups(), src, "input must not be mutated")
}

func TestMoveAppliesOptimisticallyAndPersists(t *testing.T) {
	srv := &fakeServer{}
	c := newController(t, srv, Options{})

	drop, err := c.Move(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, Drop{ID: 3, OldIndex: 2, NewIndex: 0, Rank: 10}, drop)
	assert.Equal(t, []persistCall{{3, 10}}, srv.calls)

	snap := c.List().Snapshot()
	assert.Equal(t, []int64{3, 1, 2, 4, 5}, ids(snap.Rows))
	assert.Equal(t, int64(10), snap.Rows[0].Orders)
}

func TestMoveOntoSamePositionIsInert(t *testing.T) {
	srv := &fakeServer{}
	c := newController(t, srv, Options{})
	before := c.List().Snapshot()

	_, err := c.Move(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNoMove)
	assert.Empty(t, srv.calls)
	assert.Equal(t, before, c.List().Snapshot())
}

func TestMoveFailureReloadsServerOrder(t *testing.T) {
	boom := errors.New("server said no")
	srv := &fakeServer{err: boom}
	c := newController(t, srv, Options{})

	_, err := c.Move(context.Background(), 4, 1)
	require.ErrorIs(t, err, boom)

	c.List().Wait()
	snap := c.List().Snapshot()
	assert.Equal(t, listing.Loaded, snap.State)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(snap.Rows))
}

func TestBeginDragFiresFeedback(t *testing.T) {
	var pulses []int
	c := newController(t, &fakeServer{}, Options{OnDragStart: func(i int) { pulses = append(pulses, i) }})

	assert.True(t, c.BeginDrag(3))
	assert.False(t, c.BeginDrag(9))
	assert.Equal(t, []int{3}, pulses)
}
