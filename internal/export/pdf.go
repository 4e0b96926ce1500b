package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// PDF page geometry in millimetres on A4 portrait.
const (
	pdfMargin    = 10.0
	pdfTop       = 15.0
	pdfBottom    = 285.0
	pdfPageWidth = 210.0
)

// WritePDF writes the document as an A4 PDF with one PDF page per page.
func WritePDF(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfTop, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("curriculum-designer", true)

	// Core fonts are cp1252; bullets and accents survive, other runes become '?'.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	height := doc.Layout.Height
	if height <= 0 {
		height = DefaultLayout.Height
	}
	width := doc.Layout.Width
	if width <= 0 {
		width = DefaultLayout.Width
	}
	lineHeight := (pdfBottom - pdfTop) / float64(height)
	colWidth := (pdfPageWidth - 2*pdfMargin) / float64(width)

	for n, page := range doc.Pages {
		pdf.AddPage()
		y := pdfTop
		for _, l := range page.Lines {
			x := pdfMargin + float64(l.Indent)*colWidth

			switch l.Style {
			case StyleBlank:
			case StyleRule:
				pdf.SetDrawColor(148, 163, 184)
				pdf.SetLineWidth(0.3)
				pdf.Line(pdfMargin, y-lineHeight/2, pdfPageWidth-pdfMargin, y-lineHeight/2)
			case StyleTitle:
				pdf.SetFont("Helvetica", "B", 22)
				pdf.SetTextColor(30, 41, 59)
				pdf.Text(x, y, tr(l.Text))
			case StyleSubtitle:
				pdf.SetFont("Helvetica", "", 12)
				pdf.SetTextColor(71, 85, 105)
				pdf.Text(x, y, tr(l.Text))
			case StyleHeading:
				pdf.SetFont("Helvetica", "B", 14)
				pdf.SetTextColor(0, 0, 0)
				pdf.Text(x, y, tr(l.Text))
			default:
				pdf.SetFont("Helvetica", "", 10)
				pdf.SetTextColor(0, 0, 0)
				pdf.Text(x, y, tr(l.Text))
			}
			y += lineHeight
		}

		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(148, 163, 184)
		footer := fmt.Sprintf("%d / %d", n+1, len(doc.Pages))
		pdf.Text((pdfPageWidth-pdf.GetStringWidth(footer))/2, pdfBottom+6, footer)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
