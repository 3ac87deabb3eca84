package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/pkg/models"
)

func fixedFinalizer() *Finalizer {
	f := NewFinalizer("")
	f.Clock = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 123456789, time.FixedZone("WAT", 3600)) }
	f.ID = func() string { return "inv-1" }
	f.Random = func(int) int { return 7 }
	return f
}

func readyDraft(t *testing.T, lines ...[2]string) *Draft {
	t.Helper()
	d := NewDraft()
	d.SetCustomer(models.Customer{Name: "John Okafor", Phone: "0801 234 5678"})
	for i, line := range lines {
		id := d.Items[0].ID
		if i > 0 {
			id = d.AddItem().ID
		}
		require.True(t, d.UpdateItem(id, FieldDescription, "Cement "+line[0]))
		require.True(t, d.UpdateItem(id, FieldQuantity, line[0]))
		require.True(t, d.UpdateItem(id, FieldUnitPrice, line[1]))
	}
	return d
}

func TestFinalizeSingleLine(t *testing.T) {
	d := readyDraft(t, [2]string{"50", "9000"})
	d.SetDeliveryFee("15000")

	inv, err := fixedFinalizer().Finalize(d)
	require.NoError(t, err)

	assert.Equal(t, "inv-1", inv.ID)
	assert.Equal(t, "450000", inv.Subtotal.String())
	assert.Equal(t, "0", inv.DiscountAmount.String())
	assert.Equal(t, "465000", inv.TotalAmount.String())
	assert.Equal(t, "15000", inv.DeliveryFee.String())
	assert.Equal(t, models.StatusPending, inv.Status)
	assert.Equal(t, "450000", inv.Items[0].Total.String())
	assert.Equal(t, time.UTC, inv.Date.Location())
}

func TestFinalizeWithDiscount(t *testing.T) {
	d := readyDraft(t, [2]string{"10", "8500"}, [2]string{"5", "9000"})
	d.SetDiscountPercent("2")
	d.SetDeliveryFee("5000")

	inv, err := fixedFinalizer().Finalize(d)
	require.NoError(t, err)

	assert.Equal(t, "130000", inv.Subtotal.String())
	assert.Equal(t, "2600", inv.DiscountAmount.String())
	assert.Equal(t, "132400", inv.TotalAmount.String())
	assert.Equal(t, "2", inv.DiscountPercent.String())
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "85000", inv.Items[0].Total.String())
	assert.Equal(t, "45000", inv.Items[1].Total.String())
}

func TestFinalizeNumberFormat(t *testing.T) {
	f := fixedFinalizer()
	inv, err := f.Finalize(readyDraft(t, [2]string{"1", "9000"}))
	require.NoError(t, err)

	// 2025-03-14T08:30:00.123Z in unix milliseconds ends in ...800123
	want := time.Date(2025, 3, 14, 8, 30, 0, 123000000, time.UTC).UnixMilli() % 1000000
	assert.Regexp(t, NumberPattern, inv.InvoiceNumber)
	assert.Equal(t, f.Number(f.Clock()), inv.InvoiceNumber)
	assert.Contains(t, inv.InvoiceNumber, "-007")
	assert.Equal(t, "TMV-", inv.InvoiceNumber[:4])
	assert.Len(t, inv.InvoiceNumber, len("TMV-000000-000"))
	assert.EqualValues(t, want, mustAtoi(t, inv.InvoiceNumber[4:10]))

	custom := NewFinalizer("abc")
	assert.Regexp(t, `^ABC-\d{6}-\d{3}$`, custom.Number(time.Now()))
}

func TestFinalizeCopiesDraft(t *testing.T) {
	d := readyDraft(t, [2]string{"50", "9000"})

	inv, err := fixedFinalizer().Finalize(d)
	require.NoError(t, err)

	d.UpdateItem(d.Items[0].ID, FieldQuantity, "1")
	d.UpdateItem(d.Items[0].ID, FieldDescription, "changed")
	d.Customer.Name = "Someone else"

	assert.Equal(t, 50, inv.Items[0].Quantity)
	assert.Equal(t, "Cement 50", inv.Items[0].Description)
	assert.Equal(t, "John Okafor", inv.Customer.Name)
	assert.Equal(t, "450000", inv.TotalAmount.String())
}

func TestFinalizeRejectsInvalidDraft(t *testing.T) {
	tests := []struct {
		name       string
		draft      func() *Draft
		wantFields []string
	}{
		{
			name:       "empty draft",
			draft:      NewDraft,
			wantFields: []string{"customer.name", "items[0].description"},
		},
		{
			name: "blank customer name",
			draft: func() *Draft {
				d := readyDraft(t, [2]string{"1", "9000"})
				d.Customer.Name = "   "
				return d
			},
			wantFields: []string{"customer.name"},
		},
		{
			name: "one blank description among many",
			draft: func() *Draft {
				d := readyDraft(t, [2]string{"1", "9000"})
				d.AddItem()
				return d
			},
			wantFields: []string{"items[1].description"},
		},
		{
			name: "no items",
			draft: func() *Draft {
				d := readyDraft(t, [2]string{"1", "9000"})
				d.Items = nil
				return d
			},
			wantFields: []string{"items"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := fixedFinalizer().Finalize(tt.draft())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDraft))
			assert.Empty(t, inv.ID)

			var fields []string
			for _, v := range ValidationErrors(err) {
				fields = append(fields, v.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func mustAtoi(t *testing.T, s string) int64 {
	t.Helper()
	n, ok := ParseAmount(s)
	require.True(t, ok)
	return n.IntPart()
}
