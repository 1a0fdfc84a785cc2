package listing

import (
	"fmt"

	"backoffice/internal/domain"
)

// buttonMargin is how many page buttons are shown on each side of the current page.
const buttonMargin = 4

// Window is what the pagination bar renders for one page.
type Window struct {
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
	Total    int    `json:"total"`
	LastPage int    `json:"last_page"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Pages    []int  `json:"pages"`
	HasPrev  bool   `json:"has_prev"`
	HasNext  bool   `json:"has_next"`
	Label    string `json:"label"`
}

// NewWindow computes the visible range [(page-1)*perPage+1, min(page*perPage, total)]
// with page clamped to [1, lastPage].
func NewWindow(page, perPage, total int) Window {
	if perPage < 1 {
		perPage = domain.DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	lastPage := (total + perPage - 1) / perPage
	if page > lastPage {
		page = lastPage
	}
	if page < 1 {
		page = 1
	}

	start := (page-1)*perPage + 1
	end := page * perPage
	if end > total {
		end = total
	}

	lo, hi := page-buttonMargin, page+buttonMargin
	if lo < 1 {
		lo = 1
	}
	if hi > lastPage {
		hi = lastPage
	}
	pages := []int{}
	for i := lo; i <= hi; i++ {
		pages = append(pages, i)
	}

	w := Window{
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		LastPage: lastPage,
		Start:    start,
		End:      end,
		Pages:    pages,
		HasPrev:  page > 1,
		HasNext:  page < lastPage,
	}
	w.Label = w.label()
	return w
}

// WindowFromMeta builds the window from server metadata.
func WindowFromMeta(m domain.PageMeta, fallbackPerPage int) Window {
	perPage := m.PerPage
	if perPage < 1 {
		perPage = fallbackPerPage
	}
	return NewWindow(m.CurrentPage, perPage, m.Total)
}

func (w Window) label() string {
	if w.Total == 0 {
		return "No results"
	}
	return fmt.Sprintf("Showing %d–%d of %d", w.Start, w.End, w.Total)
}
