package invoice

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// DefaultNumberPrefix is printed in front of every invoice number.
const DefaultNumberPrefix = "TMV"

// NumberPattern matches the invoice number format PREFIX-NNNNNN-NNN.
var NumberPattern = regexp.MustCompile(`^[A-Z]+-\d{6}-\d{3}$`)

// Finalizer turns a valid draft into an immutable invoice.
// Clock, ID and Random may be replaced for deterministic tests.
type Finalizer struct {
	Prefix string
	Clock  func() time.Time
	ID     func() string
	Random func(n int) int

	log zerolog.Logger
}

// NewFinalizer creates a finalizer with the given number prefix
// (DefaultNumberPrefix when empty).
func NewFinalizer(prefix string) *Finalizer {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return &Finalizer{
		Prefix: strings.ToUpper(prefix),
		Clock:  time.Now,
		ID:     uuid.NewString,
		Random: rand.Intn,
		log:    logger.WithComponent("finalizer"),
	}
}

// Finalize validates d and returns a snapshot invoice with status pending.
// The draft is copied, so editing it afterwards does not affect the invoice.
func (f *Finalizer) Finalize(d *Draft) (models.Invoice, error) {
	const op = "Finalize"

	if err := d.Validate(); err != nil {
		f.log.Debug().
			Err(err).
			Msg("Draft rejected")
		return models.Invoice{}, fmt.Errorf("%s: %w", op, err)
	}

	snapshot := d.Clone()
	now := f.Clock().UTC()

	items := make([]models.LineItem, len(snapshot.Items))
	for i, item := range snapshot.Items {
		item.Description = strings.TrimSpace(item.Description)
		item.Total = item.LineTotal()
		items[i] = item
	}

	totals := ComputeTotals(items, snapshot.DiscountPercent, snapshot.DeliveryFee)

	inv := models.Invoice{
		ID:            f.ID(),
		InvoiceNumber: f.Number(now),
		Date:          now,
		Customer: models.Customer{
			Name:    strings.TrimSpace(snapshot.Customer.Name),
			Phone:   strings.TrimSpace(snapshot.Customer.Phone),
			Address: strings.TrimSpace(snapshot.Customer.Address),
		},
		Items:           items,
		Subtotal:        totals.Subtotal,
		DiscountPercent: snapshot.DiscountPercent,
		DiscountAmount:  totals.DiscountAmount,
		DeliveryFee:     snapshot.DeliveryFee,
		TotalAmount:     totals.Total,
		Status:          models.StatusPending,
		Notes:           strings.TrimSpace(snapshot.Notes),
	}

	f.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("customer", inv.Customer.Name).
		Int("items", len(inv.Items)).
		Str("total", inv.TotalAmount.String()).
		Msg("Draft finalized")

	return inv, nil
}

// Number formats an invoice number from the last six digits of the unix
// millisecond clock and a three-digit random suffix. It is display-unique,
// not globally unique.
func (f *Finalizer) Number(at time.Time) string {
	return fmt.Sprintf("%s-%06d-%03d", f.Prefix, at.UnixMilli()%1000000, f.Random(1000))
}
