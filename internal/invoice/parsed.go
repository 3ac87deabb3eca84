package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"invoicer/pkg/models"
)

// ParsedCustomer holds the customer fields a parser could recognise.
// A nil field was not found.
type ParsedCustomer struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// ParsedItem is one product row recognised by a parser.
type ParsedItem struct {
	Description *string             `json:"description,omitempty"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	UnitPrice   decimal.NullDecimal `json:"unitPrice"`
}

// ParsedResult is a partial update of a Draft. Every field is optional and
// the merge rules in ApplyParsedResult decide what overwrites what:
//   - numbers (delivery fee, discount) overwrite when present, zero included
//   - text overwrites when present and not blank
//   - items replace the draft rows only when the list is non-empty
type ParsedResult struct {
	Customer        *ParsedCustomer     `json:"customer,omitempty"`
	Items           []ParsedItem        `json:"items,omitempty"`
	DeliveryFee     decimal.NullDecimal `json:"deliveryFee"`
	DiscountPercent decimal.NullDecimal `json:"discountPercent"`
	Notes           *string             `json:"notes,omitempty"`
}

// HasData reports whether merging r into any draft would change something.
func (r *ParsedResult) HasData() bool {
	if r == nil {
		return false
	}
	if r.Customer != nil && (present(r.Customer.Name) || present(r.Customer.Phone) || present(r.Customer.Address)) {
		return true
	}
	return len(r.Items) > 0 || r.DeliveryFee.Valid || r.DiscountPercent.Valid || present(r.Notes)
}

// ApplyParsedResult merges r into the draft and reports whether any usable
// data was found. When it returns false the draft is untouched.
func (d *Draft) ApplyParsedResult(r *ParsedResult) bool {
	if !r.HasData() {
		return false
	}

	if c := r.Customer; c != nil {
		setText(&d.Customer.Name, c.Name)
		setText(&d.Customer.Phone, c.Phone)
		setText(&d.Customer.Address, c.Address)
	}

	if len(r.Items) > 0 {
		items := make([]models.LineItem, 0, len(r.Items))
		for _, p := range r.Items {
			item := models.LineItem{ID: newItemID(), UnitPrice: decimal.Zero}
			if p.Description != nil {
				item.Description = strings.TrimSpace(*p.Description)
			}
			if p.Quantity.Valid {
				item.Quantity = quantity(p.Quantity.Decimal)
			}
			if p.UnitPrice.Valid {
				item.UnitPrice = nonNegative(p.UnitPrice.Decimal)
			}
			items = append(items, item)
		}
		d.Items = items
	}

	if r.DeliveryFee.Valid {
		d.DeliveryFee = nonNegative(r.DeliveryFee.Decimal)
	}
	if r.DiscountPercent.Valid {
		d.DiscountPercent = nonNegative(r.DiscountPercent.Decimal)
	}
	setText(&d.Notes, r.Notes)

	return true
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func setText(dst *string, src *string) {
	if present(src) {
		*dst = strings.TrimSpace(*src)
	}
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// rawParsed mirrors the parser's JSON with every leaf left undecoded so that
// numbers sent as strings ("15,000", "15k") and text sent as numbers
// (a phone number) are both accepted.
type rawParsed struct {
	Customer *struct {
		Name    json.RawMessage `json:"name"`
		Phone   json.RawMessage `json:"phone"`
		Address json.RawMessage `json:"address"`
	} `json:"customer"`
	Items []struct {
		Description json.RawMessage `json:"description"`
		Quantity    json.RawMessage `json:"quantity"`
		UnitPrice   json.RawMessage `json:"unitPrice"`
	} `json:"items"`
	DeliveryFee     json.RawMessage `json:"deliveryFee"`
	DiscountPercent json.RawMessage `json:"discountPercent"`
	Notes           json.RawMessage `json:"notes"`
}

// DecodeParsedResult decodes parser output. Surrounding prose or markdown
// code fences are ignored; the first JSON object found is used.
func DecodeParsedResult(data []byte) (*ParsedResult, error) {
	const op = "DecodeParsedResult"

	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%s: no JSON object in parser output: %w", op, ErrMalformedParsedResult)
	}

	var raw rawParsed
	if err := json.Unmarshal(data[start:end+1], &raw); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrMalformedParsedResult)
	}

	out := &ParsedResult{
		DeliveryFee:     rawNumber(raw.DeliveryFee),
		DiscountPercent: rawNumber(raw.DiscountPercent),
		Notes:           rawText(raw.Notes),
	}

	if raw.Customer != nil {
		out.Customer = &ParsedCustomer{
			Name:    rawText(raw.Customer.Name),
			Phone:   rawText(raw.Customer.Phone),
			Address: rawText(raw.Customer.Address),
		}
	}

	for _, it := range raw.Items {
		out.Items = append(out.Items, ParsedItem{
			Description: rawText(it.Description),
			Quantity:    rawNumber(it.Quantity),
			UnitPrice:   rawNumber(it.UnitPrice),
		})
	}

	return out, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func rawText(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Numbers and booleans keep their literal form.
		s = string(bytes.TrimSpace(raw))
	}
	return &s
}

func rawNumber(raw json.RawMessage) decimal.NullDecimal {
	if isNull(raw) {
		return decimal.NullDecimal{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if amount, ok := ParseAmount(s); ok {
			return decimal.NewNullDecimal(amount)
		}
		return decimal.NullDecimal{}
	}

	amount, err := decimal.NewFromString(string(bytes.TrimSpace(raw)))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount)
}
