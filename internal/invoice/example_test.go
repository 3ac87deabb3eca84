package invoice_test

import (
	"errors"
	"fmt"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// Example composes a draft by hand and finalizes it.
func Example() {
	draft := invoice.NewDraft()
	draft.SetCustomer(models.Customer{Name: "Chinedu Stores", Phone: "0803-555-0101"})

	row := draft.Items[0].ID
	draft.UpdateItem(row, invoice.FieldDescription, "BUA 42.5")
	draft.UpdateItem(row, invoice.FieldQuantity, "10")
	draft.UpdateItem(row, invoice.FieldUnitPrice, "8500")

	second := draft.AddItem()
	draft.UpdateItem(second.ID, invoice.FieldDescription, "Dangote 42.5R")
	draft.UpdateItem(second.ID, invoice.FieldQuantity, "5")
	draft.UpdateItem(second.ID, invoice.FieldUnitPrice, "9000")

	draft.SetDiscountPercent("2")
	draft.SetDeliveryFee("5000")

	inv, err := invoice.NewFinalizer("TMV").Finalize(draft)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("subtotal:", inv.Subtotal)
	fmt.Println("discount:", inv.DiscountAmount)
	fmt.Println("total:", inv.TotalAmount)
	fmt.Println("status:", inv.Status)
	// Output:
	// subtotal: 130000
	// discount: 2600
	// total: 132400
	// status: pending
}

// ExampleFinalizer_Finalize_validation shows how a rejected draft reports its missing fields.
func ExampleFinalizer_Finalize_validation() {
	_, err := invoice.NewFinalizer("").Finalize(invoice.NewDraft())

	fmt.Println(errors.Is(err, invoice.ErrInvalidDraft))
	for _, v := range invoice.ValidationErrors(err) {
		fmt.Println(v.Field)
	}
	// Output:
	// true
	// customer.name
	// items[0].description
}

// ExampleComputeTotals prices a draft without finalizing it.
func ExampleComputeTotals() {
	draft := invoice.NewDraft()
	draft.UpdateItem(draft.Items[0].ID, invoice.FieldQuantity, "50")
	draft.UpdateItem(draft.Items[0].ID, invoice.FieldUnitPrice, "9,000")
	draft.SetDeliveryFee("15k")

	totals := draft.Totals()
	fmt.Println(totals.Subtotal, totals.DiscountAmount, totals.Total)
	// Output: 450000 0 465000
}
