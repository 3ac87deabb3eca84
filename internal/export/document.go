package export

import (
	"strconv"

	"invoicer/pkg/models"
)

// document is the printable layout shared by the PDF and PNG renderers.
type document struct {
	Business Business
	Number   string
	Date     string
	Status   models.Status
	Customer models.Customer
	Rows     []documentRow
	Totals   []documentTotal
	Notes    string
}

type documentRow struct {
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

type documentTotal struct {
	Label string
	Value string
	Grand bool
}

func newDocument(inv models.Invoice, business Business) document {
	doc := document{
		Business: business,
		Number:   inv.InvoiceNumber,
		Date:     FormatDate(inv.Date),
		Status:   inv.Status,
		Customer: inv.Customer,
		Notes:    inv.Notes,
	}
	doc.Business.Name = business.displayName()

	for _, item := range inv.Items {
		doc.Rows = append(doc.Rows, documentRow{
			Description: item.Description,
			Quantity:    strconv.Itoa(item.Quantity),
			UnitPrice:   FormatNGN(item.UnitPrice),
			Total:       FormatNGN(item.Total),
		})
	}

	doc.Totals = append(doc.Totals, documentTotal{Label: "Subtotal", Value: FormatNGN(inv.Subtotal)})
	if !inv.DiscountAmount.IsZero() {
		doc.Totals = append(doc.Totals, documentTotal{
			Label: "Discount (" + inv.DiscountPercent.String() + "%)",
			Value: "-" + FormatNGN(inv.DiscountAmount),
		})
	}
	doc.Totals = append(doc.Totals,
		documentTotal{Label: "Delivery", Value: FormatNGN(inv.DeliveryFee)},
		documentTotal{Label: "Total", Value: FormatNGN(inv.TotalAmount), Grand: true},
	)
	return doc
}
