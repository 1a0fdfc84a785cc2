package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/listing"
	"backoffice/internal/resources"
	"backoffice/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ExportService renders the current page of a screen as a PDF table.
type ExportService struct {
	RequestID string
	Now       func() time.Time
}

func (s ExportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RenderPage returns the PDF bytes and a download filename.
func (s ExportService) RenderPage(d resources.Descriptor, page resources.Page, perPage int) ([]byte, string, error) {
	utils.LogEvent(s.RequestID, d.Name, "export_pdf", fmt.Sprintf("rows=%d total=%d", len(page.Table.Rows), page.Meta.Total))

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(d.Title, false)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, d.Title)
	pdf.Ln(10)

	w := listing.WindowFromMeta(page.Meta, perPage)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("%s   |   page %d of %d   |   generated %s", asciiLabel(w.Label), w.Page, max(w.LastPage, 1), utils.FormatDateTime(s.now())))
	pdf.Ln(9)

	headers := page.Table.Headers
	if len(headers) == 0 {
		pdf.Cell(0, 7, "No columns configured.")
		return output(pdf, d.Name, s.now())
	}
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(headers))

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range headers {
			pdf.CellFormat(colW, 7, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	drawHeader()

	if len(page.Table.Rows) == 0 {
		pdf.CellFormat(colW*float64(len(headers)), 7, "No results", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	_, pageH := pdf.GetPageSize()
	for _, row := range page.Table.Rows {
		if pdf.GetY()+7 > pageH-12 {
			pdf.AddPage()
			drawHeader()
		}
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = fitCell(pdf, utils.Safe(row[i], "-"), colW-2)
			}
			pdf.CellFormat(colW, 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf, d.Name, s.now())
}

func output(pdf *gofpdf.Fpdf, name string, at time.Time) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("%s_%s.pdf", strings.ToUpper(safeFilenamePart(name)), at.Format("20060102_1504")), nil
}

// fitCell shortens s with an ellipsis until it fits width.
func fitCell(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 1 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

// asciiLabel swaps the en dash for a hyphen; the core PDF fonts are Latin-1.
func asciiLabel(s string) string {
	return strings.ReplaceAll(s, "–", "-")
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
