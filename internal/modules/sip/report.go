package sip

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// RenderReport writes a one-page PDF with the projection summary and the yearly table
func RenderReport(w io.Writer, p *Projection, generatedAt time.Time) error {
	d := p.Display()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 40

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 12, "SIP Projection", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("2 January 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFillColor(245, 247, 250)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 8, "Summary", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(50, 50, 50)
	rows := [][2]string{
		{"Monthly investment", FormatAmount(d.Plan.Monthly)},
		{"Investment period", fmt.Sprintf("%d years", d.Plan.Years)},
		{"Expected annual return", fmt.Sprintf("%g%%", d.Plan.AnnualRate)},
		{"Invested amount", FormatAmount(d.Contributed)},
		{"Estimated returns", FormatAmount(d.Returns)},
		{"Total value", FormatAmount(d.Terminal)},
	}
	half := contentWidth / 2
	for _, row := range rows {
		pdf.CellFormat(half, 7, row[0], "LB", 0, "L", true, 0, "")
		pdf.CellFormat(half, 7, row[1], "RB", 1, "R", true, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(contentWidth, 5, p.Summary(), "", "L", false)
	pdf.Ln(6)

	third := contentWidth / 3
	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(third, 8, "Year", "1", 0, "C", true, 0, "")
	pdf.CellFormat(third, 8, "Invested", "1", 0, "C", true, 0, "")
	pdf.CellFormat(third, 8, "Value", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(50, 50, 50)
	for _, pt := range d.Series {
		pdf.CellFormat(third, 6, fmt.Sprintf("%d", pt.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(third, 6, FormatAmount(pt.Contributed), "1", 0, "R", false, 0, "")
		pdf.CellFormat(third, 6, FormatAmount(pt.Value), "1", 1, "R", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build SIP report: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write SIP report: %w", err)
	}
	return nil
}
