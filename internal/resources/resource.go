// Package resources instantiates the list controllers for every back-office
// screen: which remote endpoint it reads, what it may be filtered and sorted
// by, how rows are exported and which payload its forms submit.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"backoffice/internal/apiclient"
	"backoffice/internal/domain"
	"backoffice/internal/listing"
	"backoffice/internal/reorder"
)

var ErrNotReorderable = errors.New("resource does not support manual ordering")

// Descriptor is the static description of one screen.
type Descriptor struct {
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Endpoint    string            `json:"endpoint"`
	Query       listing.QuerySpec `json:"-"`
	Columns     []string          `json:"columns"`
	Creatable   bool              `json:"creatable"`
	Updatable   bool              `json:"updatable"`
	Deletable   bool              `json:"deletable"`
	Reorderable bool              `json:"reorderable"`
	ImageFolder string            `json:"image_folder,omitempty"`

	// RetainOnFailure keeps the previous page visible when a reload fails.
	RetainOnFailure bool `json:"-"`

	// NewPayload returns a pointer to the form payload used for create and update.
	NewPayload func() any `json:"-"`
}

// ItemEndpoint is the remote endpoint of one row.
func (d Descriptor) ItemEndpoint(id int64) string {
	return apiclient.ItemPath(d.Endpoint, id)
}

// Table is a page flattened to printable cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Page is one fetched page with its row type erased.
type Page struct {
	Rows  any             `json:"data"`
	Meta  domain.PageMeta `json:"meta"`
	Info  json.RawMessage `json:"info,omitempty"`
	Table Table           `json:"-"`
}

// View is what a live list publishes after every state change.
type View struct {
	Seq    uint64           `json:"seq"`
	State  string           `json:"state"`
	Query  domain.ListQuery `json:"query"`
	Rows   any              `json:"rows"`
	Meta   domain.PageMeta  `json:"meta"`
	Info   json.RawMessage  `json:"info,omitempty"`
	Window listing.Window   `json:"window"`
	Error  string           `json:"error,omitempty"`
}

// LiveOptions configures a list controller opened for an interactive session.
type LiveOptions struct {
	Query       domain.ListQuery
	Debounce    time.Duration
	Timeout     time.Duration
	OnChange    func(View)
	OnDragStart func(index int)
}

// Live is a running list controller, optionally reorderable.
type Live interface {
	Start(ctx context.Context)
	SetPage(page int)
	SetPageSize(perPage int)
	SetSort(field string, order domain.SortOrder)
	SetFilter(key, value string)
	SetSearch(text string)
	FlushSearch()
	Reload()
	Close()
	Wait()
	BeginDrag(index int) bool
	Move(ctx context.Context, oldIndex, newIndex int) (reorder.Drop, error)
}

// Resource is a screen bound to its row type.
type Resource interface {
	Spec() Descriptor
	List(ctx context.Context, c *apiclient.Client, q domain.ListQuery) (Page, error)
	Create(ctx context.Context, c *apiclient.Client, payload any) (any, error)
	Update(ctx context.Context, c *apiclient.Client, id int64, payload any) (any, error)
	Delete(ctx context.Context, c *apiclient.Client, id int64) error
	Open(c *apiclient.Client, opts LiveOptions) Live
}
