package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/resources"
)

func TestExportRenderPage(t *testing.T) {
	at := time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)
	svc := ExportService{Now: func() time.Time { return at }}

	rows := make([][]string, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, []string{"BK-1", "A customer with a rather long name that will not fit", "Glow", "confirmed"})
	}
	page := resources.Page{
		Meta:  domain.PageMeta{CurrentPage: 1, LastPage: 2, PerPage: 40, Total: 47},
		Table: resources.Table{Headers: []string{"Code", "Customer", "Salon", "Status"}, Rows: rows},
	}

	pdf, filename, err := svc.RenderPage(resources.Descriptor{Name: "bookings", Title: "Appointments"}, page, 40)
	if err != nil {
		t.Fatalf("RenderPage returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "BOOKINGS_20260402_1030.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestExportEmptyPage(t *testing.T) {
	svc := ExportService{}
	pdf, filename, err := svc.RenderPage(resources.Descriptor{Name: "gifts", Title: "Gift cards"}, resources.Page{
		Table: resources.Table{Headers: []string{"Code"}},
	}, 10)
	if err != nil || len(pdf) == 0 || !strings.HasPrefix(filename, "GIFTS_") {
		t.Fatalf("unexpected result len=%d name=%q err=%v", len(pdf), filename, err)
	}
}
