package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/pkg/models"
)

func TestNewDraft(t *testing.T) {
	d := NewDraft()

	require.Len(t, d.Items, 1)
	assert.NotEmpty(t, d.Items[0].ID)
	assert.Equal(t, 1, d.Items[0].Quantity)
	assert.True(t, d.Items[0].UnitPrice.IsZero())
	assert.Empty(t, d.Items[0].Description)
	assert.True(t, d.DeliveryFee.IsZero())
	assert.True(t, d.DiscountPercent.IsZero())
	assert.Equal(t, models.Customer{}, d.Customer)
}

func TestDraftAddItem(t *testing.T) {
	d := NewDraft()

	added := d.AddItem()

	require.Len(t, d.Items, 2)
	assert.Equal(t, added, d.Items[1])
	assert.NotEqual(t, d.Items[0].ID, d.Items[1].ID)
	assert.Equal(t, 1, added.Quantity)
}

func TestDraftUpdateItem(t *testing.T) {
	d := NewDraft()
	id := d.Items[0].ID

	assert.True(t, d.UpdateItem(id, FieldDescription, "Dangote 42.5R"))
	assert.True(t, d.UpdateItem(id, FieldQuantity, "50"))
	assert.True(t, d.UpdateItem(id, FieldUnitPrice, "9,000"))

	got, ok := d.Item(id)
	require.True(t, ok)
	assert.Equal(t, "Dangote 42.5R", got.Description)
	assert.Equal(t, 50, got.Quantity)
	assert.Equal(t, "9000", got.UnitPrice.String())

	t.Run("non-numeric input becomes zero", func(t *testing.T) {
		assert.True(t, d.UpdateItem(id, FieldQuantity, "many"))
		assert.True(t, d.UpdateItem(id, FieldUnitPrice, "-5"))
		got, _ := d.Item(id)
		assert.Equal(t, 0, got.Quantity)
		assert.True(t, got.UnitPrice.IsZero())
	})

	t.Run("oversized quantity becomes zero", func(t *testing.T) {
		assert.True(t, d.UpdateItem(id, FieldUnitPrice, "9000"))
		assert.True(t, d.UpdateItem(id, FieldQuantity, "9223372036854775808"))
		got, _ := d.Item(id)
		assert.Equal(t, 0, got.Quantity)
		assert.False(t, d.Totals().Total.IsNegative())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before := d.Clone()
		assert.False(t, d.UpdateItem("missing", FieldDescription, "BUA"))
		assert.Equal(t, before, d)
	})

	t.Run("unknown field is a no-op", func(t *testing.T) {
		before := d.Clone()
		assert.False(t, d.UpdateItem(id, ItemField("colour"), "grey"))
		assert.Equal(t, before, d)
	})
}

func TestDraftRemoveItem(t *testing.T) {
	d := NewDraft()
	only := d.Items[0].ID

	assert.False(t, d.RemoveItem(only), "last row must stay")
	assert.Len(t, d.Items, 1)

	second := d.AddItem()
	third := d.AddItem()

	assert.False(t, d.RemoveItem("missing"))
	assert.True(t, d.RemoveItem(second.ID))
	require.Len(t, d.Items, 2)
	assert.Equal(t, only, d.Items[0].ID)
	assert.Equal(t, third.ID, d.Items[1].ID)
}

func TestDraftReset(t *testing.T) {
	d := NewDraft()
	d.SetCustomer(models.Customer{Name: "John", Phone: "08012345678"})
	d.AddItem()
	d.SetDeliveryFee("15k")
	d.SetDiscountPercent("5")
	d.SetNotes("deliver before noon")

	d.Reset()

	require.Len(t, d.Items, 1)
	assert.Equal(t, models.Customer{}, d.Customer)
	assert.True(t, d.DeliveryFee.IsZero())
	assert.True(t, d.DiscountPercent.IsZero())
	assert.Empty(t, d.Notes)
}

func TestDraftTotalsRecomputeOnEdit(t *testing.T) {
	d := NewDraft()
	id := d.Items[0].ID
	d.UpdateItem(id, FieldQuantity, "50")
	d.UpdateItem(id, FieldUnitPrice, "9000")

	assert.Equal(t, "450000", d.Totals().Total.String())

	d.SetDeliveryFee("15000")
	assert.Equal(t, "465000", d.Totals().Total.String())
}

func TestDraftNormalize(t *testing.T) {
	d := &Draft{}
	d.Normalize()
	require.Len(t, d.Items, 1)

	d = &Draft{Items: []models.LineItem{{Description: "BUA"}}}
	d.Normalize()
	assert.NotEmpty(t, d.Items[0].ID)
}

func TestParseItemField(t *testing.T) {
	for in, want := range map[string]ItemField{
		"description": FieldDescription,
		"desc":        FieldDescription,
		"qty":         FieldQuantity,
		"unit-price":  FieldUnitPrice,
		"unitPrice":   FieldUnitPrice,
		"price":       FieldUnitPrice,
	} {
		got, ok := ParseItemField(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseItemField("colour")
	assert.False(t, ok)
}
