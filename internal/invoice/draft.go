package invoice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invoicer/pkg/models"
)

// ItemField names an editable column of a draft line item.
type ItemField string

const (
	FieldDescription ItemField = "description"
	FieldQuantity    ItemField = "quantity"
	FieldUnitPrice   ItemField = "unitPrice"
)

// ParseItemField accepts the field names used on the command line
// ("desc", "qty", "price", "unit-price", ...).
func ParseItemField(name string) (ItemField, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(name, "-", ""), "_", "")) {
	case "description", "desc":
		return FieldDescription, true
	case "quantity", "qty":
		return FieldQuantity, true
	case "unitprice", "price":
		return FieldUnitPrice, true
	}
	return "", false
}

var newItemID = uuid.NewString

// Draft is the mutable order being composed before finalization.
// A draft always holds at least one item row.
type Draft struct {
	Customer        models.Customer   `json:"customer"`
	Items           []models.LineItem `json:"items"`
	DeliveryFee     decimal.Decimal   `json:"deliveryFee"`
	DiscountPercent decimal.Decimal   `json:"discountPercent"`
	Notes           string            `json:"notes,omitempty"`
}

// NewDraft returns an empty draft with one blank item row.
func NewDraft() *Draft {
	d := &Draft{}
	d.Reset()
	return d
}

// Reset restores the empty initial state.
func (d *Draft) Reset() {
	d.Customer = models.Customer{}
	d.Items = []models.LineItem{blankItem()}
	d.DeliveryFee = decimal.Zero
	d.DiscountPercent = decimal.Zero
	d.Notes = ""
}

// Normalize restores the one-row invariant on a draft loaded from storage
// and fills in missing item ids.
func (d *Draft) Normalize() {
	if len(d.Items) == 0 {
		d.Items = []models.LineItem{blankItem()}
	}
	for i := range d.Items {
		if d.Items[i].ID == "" {
			d.Items[i].ID = newItemID()
		}
	}
}

func blankItem() models.LineItem {
	return models.LineItem{
		ID:        newItemID(),
		Quantity:  1,
		UnitPrice: decimal.Zero,
	}
}

// AddItem appends a blank row (quantity 1, price 0) and returns it.
func (d *Draft) AddItem() models.LineItem {
	item := blankItem()
	d.Items = append(d.Items, item)
	return item
}

// UpdateItem sets one field of the item with the given id. Numeric values
// that do not parse, or are negative, become zero. It reports false when the
// id or field is unknown.
func (d *Draft) UpdateItem(id string, field ItemField, value string) bool {
	idx := d.indexOf(id)
	if idx < 0 {
		return false
	}

	item := &d.Items[idx]
	switch field {
	case FieldDescription:
		item.Description = value
	case FieldQuantity:
		item.Quantity = QuantityOrZero(value)
	case FieldUnitPrice:
		item.UnitPrice = AmountOrZero(value)
	default:
		return false
	}
	return true
}

// RemoveItem deletes the item with the given id unless it is the last row.
func (d *Draft) RemoveItem(id string) bool {
	if len(d.Items) <= 1 {
		return false
	}
	idx := d.indexOf(id)
	if idx < 0 {
		return false
	}
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
	return true
}

// SetCustomer replaces the customer block.
func (d *Draft) SetCustomer(c models.Customer) {
	d.Customer = c
}

// SetDeliveryFee parses and sets the delivery fee, defaulting to zero.
func (d *Draft) SetDeliveryFee(value string) {
	d.DeliveryFee = AmountOrZero(value)
}

// SetDiscountPercent parses and sets the discount percentage, defaulting to zero.
// Values above 100 are kept as entered.
func (d *Draft) SetDiscountPercent(value string) {
	d.DiscountPercent = AmountOrZero(value)
}

// SetNotes replaces the free-text notes.
func (d *Draft) SetNotes(notes string) {
	d.Notes = notes
}

// Totals prices the draft as it stands right now.
func (d *Draft) Totals() Totals {
	return ComputeTotals(d.Items, d.DiscountPercent, d.DeliveryFee)
}

// Item returns the item with the given id.
func (d *Draft) Item(id string) (models.LineItem, bool) {
	idx := d.indexOf(id)
	if idx < 0 {
		return models.LineItem{}, false
	}
	return d.Items[idx], true
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	out := *d
	out.Items = append([]models.LineItem(nil), d.Items...)
	return &out
}

// Validate returns every problem that would block finalization, joined.
func (d *Draft) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Customer.Name) == "" {
		errs = append(errs, NewValidationError("customer.name", d.Customer.Name, "customer name is required"))
	}
	if len(d.Items) == 0 {
		errs = append(errs, NewValidationError("items", 0, "at least one item is required"))
	}
	for i, item := range d.Items {
		if strings.TrimSpace(item.Description) == "" {
			errs = append(errs, NewValidationError(fmt.Sprintf("items[%d].description", i), item.Description, "item description is required"))
		}
	}
	return errors.Join(errs...)
}

func (d *Draft) indexOf(id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}
