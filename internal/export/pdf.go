package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"invoicer/pkg/models"
)

// RenderPDF writes an A4 invoice to w.
func RenderPDF(w io.Writer, inv models.Invoice, business Business) error {
	const op = "RenderPDF"

	doc := newDocument(inv, business)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+doc.Number, true)
	pdf.SetAuthor(doc.Business.Name, true)
	pdf.SetCreator("invoicer", true)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(148, 163, 184)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s - page %d/{nb}", doc.Number, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if doc.Status == models.StatusPaid || doc.Status == models.StatusCancelled {
		stamp(pdf, doc.Status)
	}

	// Seller
	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(15, 23, 42)
	pdf.CellFormat(110, 10, tr(doc.Business.Name), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 28)
	pdf.SetTextColor(203, 213, 225)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 116, 139)
	for _, line := range []string{doc.Business.Tagline, doc.Business.Address, doc.Business.Phone} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(6)

	// Invoice meta and customer
	pdf.SetTextColor(15, 23, 42)
	meta := [][2]string{
		{"Number", doc.Number},
		{"Date", doc.Date},
		{"Status", StatusLabel(doc.Status)},
	}
	for _, m := range meta {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(25, 6, m[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, m[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{doc.Customer.Name, doc.Customer.Phone, doc.Customer.Address} {
		if line != "" {
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
	}
	pdf.Ln(6)

	// Line items
	widths := []float64{90, 20, 35, 35}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(241, 245, 249)
	for i, h := range []string{"Description", "Qty", "Unit Price", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range doc.Rows {
		pdf.CellFormat(widths[0], 7, tr(row.Description), "B", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, row.Quantity, "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, row.UnitPrice, "B", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, row.Total, "B", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	for _, t := range doc.Totals {
		style, size := "", 10.0
		if t.Grand {
			style, size = "B", 12
		}
		pdf.SetFont("Arial", style, size)
		pdf.CellFormat(widths[0]+widths[1]+widths[2], 7, t.Label, "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, t.Value, "", 1, "R", false, 0, "")
	}

	if doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(doc.Notes), "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 6, "Thank you for your business!", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// stamp draws a faded, rotated PAID or CANCELLED mark behind the page content.
func stamp(pdf *gofpdf.Fpdf, status models.Status) {
	x, y := pdf.GetXY()

	label := "PAID"
	r, g, b := 34, 197, 94
	if status == models.StatusCancelled {
		label = "CANCELLED"
		r, g, b = 239, 68, 68
	}

	pdf.SetAlpha(0.3, "Normal")
	pdf.TransformBegin()
	pdf.TransformRotate(15, 105, 120)
	pdf.SetDrawColor(r, g, b)
	pdf.SetTextColor(r, g, b)
	pdf.SetLineWidth(2)
	pdf.SetFont("Arial", "B", 48)
	w := pdf.GetStringWidth(label) + 16
	pdf.SetXY(105-w/2, 108)
	pdf.CellFormat(w, 24, label, "1", 0, "C", false, 0, "")
	pdf.TransformEnd()
	pdf.SetAlpha(1, "Normal")
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetXY(x, y)
}
