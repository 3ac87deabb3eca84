package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/pkg/models"
)

func str(s string) *string { return &s }

func TestApplyParsedResultWithoutCustomerKeepsCustomer(t *testing.T) {
	d := NewDraft()
	d.SetCustomer(models.Customer{Name: "Mama Nkechi", Phone: "0803 000 1111", Address: "Ikeja"})

	ok := d.ApplyParsedResult(&ParsedResult{
		Items: []ParsedItem{{
			Description: str("Dangote"),
			Quantity:    decimal.NewNullDecimal(dec("50")),
			UnitPrice:   decimal.NewNullDecimal(dec("9000")),
		}},
	})

	require.True(t, ok)
	assert.Equal(t, models.Customer{Name: "Mama Nkechi", Phone: "0803 000 1111", Address: "Ikeja"}, d.Customer)
	require.Len(t, d.Items, 1)
	assert.Equal(t, "Dangote", d.Items[0].Description)
	assert.Equal(t, 50, d.Items[0].Quantity)
	assert.Equal(t, "450000", d.Totals().Subtotal.String())
}

func TestApplyParsedResultMergePolicy(t *testing.T) {
	base := func() *Draft {
		d := NewDraft()
		d.SetCustomer(models.Customer{Name: "John", Phone: "08012345678"})
		d.SetDeliveryFee("15000")
		d.SetDiscountPercent("2")
		d.SetNotes("gate 2")
		d.UpdateItem(d.Items[0].ID, FieldDescription, "BUA")
		return d
	}

	t.Run("zero delivery fee overwrites", func(t *testing.T) {
		d := base()
		require.True(t, d.ApplyParsedResult(&ParsedResult{DeliveryFee: decimal.NewNullDecimal(decimal.Zero)}))
		assert.True(t, d.DeliveryFee.IsZero())
		assert.Equal(t, "2", d.DiscountPercent.String(), "absent discount untouched")
	})

	t.Run("blank text does not overwrite", func(t *testing.T) {
		d := base()
		ok := d.ApplyParsedResult(&ParsedResult{
			Customer: &ParsedCustomer{Name: str("  "), Address: str("Lekki Phase 1")},
			Notes:    str(""),
		})
		require.True(t, ok)
		assert.Equal(t, "John", d.Customer.Name)
		assert.Equal(t, "08012345678", d.Customer.Phone)
		assert.Equal(t, "Lekki Phase 1", d.Customer.Address)
		assert.Equal(t, "gate 2", d.Notes)
	})

	t.Run("empty item list keeps rows", func(t *testing.T) {
		d := base()
		before := d.Items[0]
		require.True(t, d.ApplyParsedResult(&ParsedResult{Items: []ParsedItem{}, Notes: str("call first")}))
		require.Len(t, d.Items, 1)
		assert.Equal(t, before, d.Items[0])
		assert.Equal(t, "call first", d.Notes)
	})

	t.Run("missing item numbers become zero", func(t *testing.T) {
		d := base()
		require.True(t, d.ApplyParsedResult(&ParsedResult{Items: []ParsedItem{{Description: str("Lafarge")}, {}}}))
		require.Len(t, d.Items, 2)
		assert.Equal(t, 0, d.Items[0].Quantity)
		assert.True(t, d.Items[0].UnitPrice.IsZero())
		assert.Empty(t, d.Items[1].Description)
		assert.NotEqual(t, d.Items[0].ID, d.Items[1].ID)
	})

	t.Run("out of range quantity becomes zero", func(t *testing.T) {
		d := base()
		require.True(t, d.ApplyParsedResult(&ParsedResult{Items: []ParsedItem{{
			Description: str("BUA"),
			Quantity:    decimal.NewNullDecimal(decimal.RequireFromString("1e19")),
			UnitPrice:   decimal.NewNullDecimal(decimal.NewFromInt(8500)),
		}}}))
		require.Len(t, d.Items, 1)
		assert.Equal(t, 0, d.Items[0].Quantity)
		assert.False(t, d.Totals().Total.IsNegative())
	})

	t.Run("nothing usable leaves draft untouched", func(t *testing.T) {
		d := base()
		before := d.Clone()
		assert.False(t, d.ApplyParsedResult(&ParsedResult{Customer: &ParsedCustomer{}}))
		assert.False(t, d.ApplyParsedResult(nil))
		assert.Equal(t, before, d)
	})
}

func TestDecodeParsedResult(t *testing.T) {
	raw := "```json\n" + `{
  "customer": {"name": "John", "phone": 8012345678, "address": null},
  "items": [
    {"description": "Dangote 42.5R", "quantity": 50, "unitPrice": "9,000"},
    {"description": "BUA", "quantity": "10.0", "unitPrice": 8500}
  ],
  "deliveryFee": "15k",
  "notes": null
}` + "\n```"

	got, err := DecodeParsedResult([]byte(raw))
	require.NoError(t, err)

	require.NotNil(t, got.Customer)
	assert.Equal(t, "John", *got.Customer.Name)
	assert.Equal(t, "8012345678", *got.Customer.Phone)
	assert.Nil(t, got.Customer.Address)
	assert.Nil(t, got.Notes)
	assert.False(t, got.DiscountPercent.Valid)
	require.True(t, got.DeliveryFee.Valid)
	assert.Equal(t, "15000", got.DeliveryFee.Decimal.String())

	require.Len(t, got.Items, 2)
	assert.Equal(t, "9000", got.Items[0].UnitPrice.Decimal.String())
	assert.Equal(t, "10", got.Items[1].Quantity.Decimal.String())

	d := NewDraft()
	require.True(t, d.ApplyParsedResult(got))
	assert.Equal(t, "535000", d.Totals().Subtotal.String())
	assert.Equal(t, "550000", d.Totals().Total.String())
}

func TestDecodeParsedResultMalformed(t *testing.T) {
	for _, in := range []string{"", "sorry, I could not read that", "{not json}", "[1,2]"} {
		_, err := DecodeParsedResult([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedParsedResult, in)
	}
}

func TestDecodeParsedResultEmptyObject(t *testing.T) {
	got, err := DecodeParsedResult([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, got.HasData())
}
