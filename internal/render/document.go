package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/lucasnoah/deliverynote/internal/reconcile"
)

// Column widths in mm for the A4 portrait table.
var docColumns = []struct {
	header string
	width  float64
}{
	{"Test case", 40},
	{"Type", 40},
	{"Result", 100},
}

const (
	docRowHeight    = 7
	docBottomMargin = 15
)

// Document renders the delivery note as a paginated A4 PDF: title,
// execution date, a result table and the summary paragraphs.
func Document(rep reconcile.Report, meta Meta) ([]byte, error) {
	pdf := buildDocument(rep, meta)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func buildDocument(rep reconcile.Report, meta Meta) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(meta.title(), true)
	pdf.SetCreator("deliverynote", true)
	pdf.SetCreationDate(meta.Generated.UTC())
	pdf.SetAutoPageBreak(true, docBottomMargin)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-docBottomMargin + 3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(meta.title()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Execution date: "+meta.timestamp(), "", 1, "L", false, 0, "")
	if meta.RunID != "" {
		pdf.CellFormat(0, 6, "Run: "+meta.RunID, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	_, pageHeight := pdf.GetPageSize()
	tableHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(211, 211, 211)
		pdf.SetDrawColor(128, 128, 128)
		for _, c := range docColumns {
			pdf.CellFormat(c.width, docRowHeight, c.header, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}

	tableHeader()
	resultWidth := docColumns[2].width
	for _, r := range rep.Rows {
		// Raw outcome text wraps inside its cell; the row grows to fit.
		lines := pdf.SplitText(tr(r.StatusText), resultWidth)
		if len(lines) == 0 {
			lines = []string{""}
		}
		h := float64(len(lines)) * docRowHeight
		if pdf.GetY()+h > pageHeight-docBottomMargin {
			pdf.AddPage()
			tableHeader()
		}
		x, y := pdf.GetXY()
		pdf.CellFormat(docColumns[0].width, h, tr(r.ID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(docColumns[1].width, h, tr(r.DisplayKind), "1", 0, "L", false, 0, "")
		pdf.MultiCell(resultWidth, docRowHeight, strings.Join(lines, "\n"), "1", "L", false)
		pdf.SetXY(x, y+h)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range summary(rep.Stats) {
		pdf.CellFormat(0, 6, tr(l.doc()), "", 1, "L", false, 0, "")
	}
	return pdf
}
