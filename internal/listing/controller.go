// Package listing drives a paginated, filterable, searchable list against one
// list endpoint: query state, debounced search, loading/loaded/failed states
// and stale-response protection.
package listing

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/utils"

	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period after the last search keystroke.
const DefaultDebounce = 500 * time.Millisecond

// State is where a list is in its fetch cycle.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Fetcher loads one page for a query.
type Fetcher[T any] func(ctx context.Context, q domain.ListQuery) (domain.PageResult[T], error)

// Snapshot is an immutable copy of the controller state.
type Snapshot[T any] struct {
	Seq   uint64           `json:"seq"`
	State State            `json:"state"`
	Query domain.ListQuery `json:"query"`
	Rows  []T              `json:"rows"`
	Meta  domain.PageMeta  `json:"meta"`
	Info  json.RawMessage  `json:"info,omitempty"`
	Err   error            `json:"-"`
}

func (s Snapshot[T]) TotalItems() int  { return s.Meta.Total }
func (s Snapshot[T]) TotalPages() int  { return s.Meta.LastPage }
func (s Snapshot[T]) CurrentPage() int { return s.Meta.CurrentPage }

// Window is the pagination bar for the loaded page.
func (s Snapshot[T]) Window() Window {
	if s.Meta.CurrentPage == 0 {
		return NewWindow(s.Query.Page, s.Query.PerPage, 0)
	}
	return WindowFromMeta(s.Meta, s.Query.PerPage)
}

// Options configures a Controller.
type Options[T any] struct {
	Query domain.ListQuery

	// Debounce of search text; zero means DefaultDebounce, negative disables it.
	Debounce time.Duration

	// Timeout bounds every fetch; zero means none.
	Timeout time.Duration

	// RetainOnFailure keeps the previous rows when a fetch fails.
	RetainOnFailure bool

	// OnChange receives every state transition in order. It must not call
	// back into the controller synchronously.
	OnChange func(Snapshot[T])
	Logger   *logrus.Entry
}

// Controller owns the query, rows and fetch state of one paginated list.
type Controller[T any] struct {
	fetch Fetcher[T]
	opts  Options[T]

	mu       sync.Mutex
	notifyMu sync.Mutex
	base     context.Context
	query    domain.ListQuery
	state    State
	rows     []T
	meta     domain.PageMeta
	info     json.RawMessage
	err      error
	seq      uint64
	cancel   context.CancelFunc
	closed   bool

	timer         *time.Timer
	searchGen     uint64
	pendingSearch string
	searchPending bool

	inflight sync.WaitGroup
}

// New returns an idle controller; nothing is fetched until Start.
func New[T any](fetch Fetcher[T], opts Options[T]) *Controller[T] {
	q := opts.Query
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(utils.Logger())
	}
	return &Controller[T]{fetch: fetch, opts: opts, query: q.Normalize(0)}
}

// Start mounts the controller: the first fetch fires immediately.
func (c *Controller[T]) Start(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.base != nil {
		c.mu.Unlock()
		return
	}
	c.base = ctx
	c.fetchLocked()
	c.unlockAndNotify()
}

// SetPage moves to page (clamped to ≥1).
func (c *Controller[T]) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.update(func(q *domain.ListQuery) bool {
		if q.Page == page {
			return false
		}
		q.Page = page
		return true
	})
}

// SetPageSize changes the page size and goes back to page 1.
func (c *Controller[T]) SetPageSize(perPage int) {
	if perPage < 1 {
		perPage = domain.DefaultPerPage
	}
	c.update(func(q *domain.ListQuery) bool {
		if q.PerPage == perPage {
			return false
		}
		q.PerPage = perPage
		q.Page = 1
		return true
	})
}

// SetSort changes the sort field and direction.
func (c *Controller[T]) SetSort(field string, order domain.SortOrder) {
	c.update(func(q *domain.ListQuery) bool {
		if q.SortBy == field && q.SortOrder == order {
			return false
		}
		q.SortBy = field
		q.SortOrder = order
		return true
	})
}

// SetFilter sets (or clears, for an empty value) one filter and goes back to page 1.
func (c *Controller[T]) SetFilter(key, value string) {
	value = strings.TrimSpace(value)
	c.update(func(q *domain.ListQuery) bool {
		if q.Filters[key] == value {
			return false
		}
		if value == "" {
			delete(q.Filters, key)
		} else {
			q.Filters[key] = value
		}
		q.Page = 1
		return true
	})
}

// SetSearch records search text. The fetch fires once the text has been
// stable for the debounce period, with page reset to 1.
func (c *Controller[T]) SetSearch(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pendingSearch = text
	c.searchPending = true
	c.searchGen++
	gen := c.searchGen
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.opts.Debounce < 0 {
		c.mu.Unlock()
		c.applySearch(gen)
		return
	}
	c.timer = time.AfterFunc(c.opts.Debounce, func() { c.applySearch(gen) })
	c.mu.Unlock()
}

// FlushSearch applies pending search text immediately (e.g. on Enter).
func (c *Controller[T]) FlushSearch() {
	c.mu.Lock()
	gen := c.searchGen
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.applySearch(gen)
}

func (c *Controller[T]) applySearch(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.searchGen || !c.searchPending {
		c.mu.Unlock()
		return
	}
	c.searchPending = false
	c.timer = nil
	text := strings.TrimSpace(c.pendingSearch)
	if text == c.query.Search {
		c.mu.Unlock()
		return
	}
	c.query.Search = text
	c.query.Page = 1
	if c.base == nil {
		c.mu.Unlock()
		return
	}
	c.fetchLocked()
	c.unlockAndNotify()
}

// Reload refetches the current query, e.g. after a mutation or to retry.
func (c *Controller[T]) Reload() {
	c.mu.Lock()
	if c.closed || c.base == nil {
		c.mu.Unlock()
		return
	}
	c.fetchLocked()
	c.unlockAndNotify()
}

// Replace swaps the in-memory rows without contacting the server. Any fetch
// still in flight is superseded.
func (c *Controller[T]) Replace(rows []T) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.rows = append([]T(nil), rows...)
	c.state = Loaded
	c.err = nil
	c.unlockAndNotify()
}

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until no fetch is in flight.
func (c *Controller[T]) Wait() {
	c.inflight.Wait()
}

// Close unmounts the controller: pending search and in-flight fetches are cancelled.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
}

func (c *Controller[T]) update(mutate func(q *domain.ListQuery) bool) {
	c.mu.Lock()
	if c.closed || !mutate(&c.query) {
		c.mu.Unlock()
		return
	}
	if c.base == nil {
		c.mu.Unlock()
		return
	}
	c.fetchLocked()
	c.unlockAndNotify()
}

// fetchLocked supersedes any in-flight request and starts a new one.
func (c *Controller[T]) fetchLocked() {
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(c.base, c.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(c.base)
	}
	c.cancel = cancel
	c.state = Loading
	c.err = nil
	q := c.query.Clone()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()
		res, err := c.fetch(ctx, q)
		c.settle(seq, q, res, err)
	}()
}

func (c *Controller[T]) settle(seq uint64, q domain.ListQuery, res domain.PageResult[T], err error) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		c.opts.Logger.WithFields(logrus.Fields{"seq": seq, "page": q.Page, "search": q.Search}).Debug("dropping stale list response")
		return
	}
	c.cancel = nil
	if err != nil {
		c.state = Failed
		c.err = err
		if !c.opts.RetainOnFailure {
			c.rows = nil
			c.meta = domain.PageMeta{}
			c.info = nil
		}
		c.opts.Logger.WithFields(logrus.Fields{"seq": seq, "page": q.Page}).WithError(err).Warn("list fetch failed")
	} else {
		c.state = Loaded
		c.rows = res.Data
		c.meta = res.Meta
		c.info = res.Info
	}
	c.unlockAndNotify()
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Seq:   c.seq,
		State: c.state,
		Query: c.query.Clone(),
		Rows:  append([]T(nil), c.rows...),
		Meta:  c.meta,
		Info:  c.info,
		Err:   c.err,
	}
}

// unlockAndNotify releases mu and publishes the snapshot taken under it.
// notifyMu is acquired before mu is released so listeners see transitions in order.
func (c *Controller[T]) unlockAndNotify() {
	snap := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	if c.opts.OnChange != nil {
		c.opts.OnChange(snap)
	}
}
