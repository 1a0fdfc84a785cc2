package resources

import (
	"context"

	"backoffice/internal/apiclient"
	"backoffice/internal/domain"
	"backoffice/internal/listing"
	"backoffice/internal/reorder"
)

// Screen binds a Descriptor to the row type T it lists.
type Screen[T any] struct {
	Descriptor
	Cells func(T) []string
}

func (s Screen[T]) Spec() Descriptor { return s.Descriptor }

func (s Screen[T]) fetcher(c *apiclient.Client) listing.Fetcher[T] {
	return func(ctx context.Context, q domain.ListQuery) (domain.PageResult[T], error) {
		return apiclient.FetchList[T](ctx, c, s.Endpoint, q)
	}
}

func (s Screen[T]) List(ctx context.Context, c *apiclient.Client, q domain.ListQuery) (Page, error) {
	res, err := s.fetcher(c)(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return Page{Rows: res.Data, Meta: res.Meta, Info: res.Info, Table: s.table(res.Data)}, nil
}

func (s Screen[T]) table(rows []T) Table {
	t := Table{Headers: s.Columns, Rows: make([][]string, 0, len(rows))}
	if s.Cells == nil {
		return t
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, s.Cells(r))
	}
	return t
}

func (s Screen[T]) Create(ctx context.Context, c *apiclient.Client, payload any) (any, error) {
	if !s.Creatable {
		return nil, domain.ValidationError{Msg: s.Title + " cannot be created from the dashboard"}
	}
	return apiclient.Create[T](ctx, c, s.Endpoint, payload)
}

func (s Screen[T]) Update(ctx context.Context, c *apiclient.Client, id int64, payload any) (any, error) {
	if !s.Updatable {
		return nil, domain.ValidationError{Msg: s.Title + " cannot be edited from the dashboard"}
	}
	return apiclient.Update[T](ctx, c, s.ItemEndpoint(id), payload)
}

func (s Screen[T]) Delete(ctx context.Context, c *apiclient.Client, id int64) error {
	if !s.Deletable {
		return domain.ValidationError{Msg: s.Title + " cannot be deleted from the dashboard"}
	}
	return c.Remove(ctx, s.ItemEndpoint(id))
}

func (s Screen[T]) controller(c *apiclient.Client, opts LiveOptions) *listing.Controller[T] {
	q := opts.Query
	if q.PerPage < 1 {
		q.PerPage = s.Query.PerPage
	}
	if q.SortBy == "" && s.Query.DefaultSort != "" {
		q.SortBy = s.Query.DefaultSort
		q.SortOrder = s.Query.DefaultDir
	}
	lo := listing.Options[T]{
		Query:           q,
		Debounce:        opts.Debounce,
		Timeout:         opts.Timeout,
		RetainOnFailure: s.RetainOnFailure,
	}
	if opts.OnChange != nil {
		lo.OnChange = func(snap listing.Snapshot[T]) { opts.OnChange(viewOf(snap)) }
	}
	return listing.New(s.fetcher(c), lo)
}

func (s Screen[T]) Open(c *apiclient.Client, opts LiveOptions) Live {
	return plainLive[T]{s.controller(c, opts)}
}

// OrderedScreen is a Screen whose rows carry a user-controlled rank.
type OrderedScreen[T reorder.Orderable[T]] struct {
	Screen[T]
}

func (s OrderedScreen[T]) Open(c *apiclient.Client, opts LiveOptions) Live {
	list := s.controller(c, opts)
	ctl := reorder.New(list, reorder.ClientPersist(c, s.Endpoint), reorder.Options{OnDragStart: opts.OnDragStart})
	return orderedLive[T]{Controller: list, ordered: ctl}
}

type plainLive[T any] struct {
	*listing.Controller[T]
}

func (plainLive[T]) BeginDrag(int) bool { return false }

func (plainLive[T]) Move(context.Context, int, int) (reorder.Drop, error) {
	return reorder.Drop{}, ErrNotReorderable
}

type orderedLive[T reorder.Orderable[T]] struct {
	*listing.Controller[T]
	ordered *reorder.Controller[T]
}

func (l orderedLive[T]) BeginDrag(index int) bool { return l.ordered.BeginDrag(index) }

func (l orderedLive[T]) Move(ctx context.Context, oldIndex, newIndex int) (reorder.Drop, error) {
	return l.ordered.Move(ctx, oldIndex, newIndex)
}

func viewOf[T any](snap listing.Snapshot[T]) View {
	rows := snap.Rows
	if rows == nil {
		rows = []T{}
	}
	v := View{
		Seq:    snap.Seq,
		State:  snap.State.String(),
		Query:  snap.Query,
		Rows:   rows,
		Meta:   snap.Meta,
		Info:   snap.Info,
		Window: snap.Window(),
	}
	if snap.Err != nil {
		v.Error = snap.Err.Error()
	}
	return v
}
