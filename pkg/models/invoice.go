package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is embedded by value in every invoice; there is no customer registry.
type Customer struct {
	Name    string `json:"name"`              // Required for finalization
	Phone   string `json:"phone"`             // Digits expected, not enforced
	Address string `json:"address,omitempty"` // Delivery address
}

// LineItem is one product row, e.g. "50 bags of Dangote 42.5R".
type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`  // Bags
	UnitPrice   decimal.Decimal `json:"unitPrice"` // Price per bag
	Total       decimal.Decimal `json:"total"`     // Quantity x UnitPrice, frozen at finalization
}

// LineTotal returns Quantity x UnitPrice.
func (li LineItem) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(int64(li.Quantity)).Mul(li.UnitPrice)
}

type Invoice struct {
	// Core identifiers
	ID            string    `json:"id"`            // Opaque unique token
	InvoiceNumber string    `json:"invoiceNumber"` // Human-facing, e.g. TMV-123456-042
	Date          time.Time `json:"date"`          // Creation timestamp (UTC)

	// Parties and lines, copied from the draft at finalization
	Customer Customer   `json:"customer"`
	Items    []LineItem `json:"items"`

	// Amounts, computed once at finalization and never recomputed
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`

	// The only field that may change after creation
	Status Status `json:"status"`

	Notes string `json:"notes,omitempty"`
}

// Clone returns a deep copy of the invoice.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.Items = append([]LineItem(nil), inv.Items...)
	return out
}
