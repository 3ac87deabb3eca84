package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/pkg/models"
)

var testBusiness = Business{
	Name:    "Threm Multilinks Venture",
	Tagline: "Cement Depot",
	Address: "Main Depot, Enugu, Nigeria",
	Phone:   "+234 812 345 6789",
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testInvoice() models.Invoice {
	return models.Invoice{
		ID:            "4f7c1d2e",
		InvoiceNumber: "TMV-482913-007",
		Date:          time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		Customer: models.Customer{
			Name:    "John Okafor",
			Phone:   "+234 801-234-5678",
			Address: "12 Ogui Road, Enugu",
		},
		Items: []models.LineItem{
			{ID: "a", Description: "Dangote 42.5R", Quantity: 50, UnitPrice: d("9000"), Total: d("450000")},
		},
		Subtotal:        d("450000"),
		DiscountPercent: d("2"),
		DiscountAmount:  d("9000"),
		DeliveryFee:     d("15000"),
		TotalAmount:     d("456000"),
		Status:          models.StatusPending,
	}
}

func TestFormatNaira(t *testing.T) {
	tests := map[string]string{
		"0":          "₦0.00",
		"1234":       "₦1,234.00",
		"624.975":    "₦624.98",
		"1500000.5":  "₦1,500,000.50",
		"-500":       "-₦500.00",
		"9000.0000":  "₦9,000.00",
		"1234567.89": "₦1,234,567.89",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNaira(d(in)), in)
	}
	assert.Equal(t, "NGN 465,000.00", FormatNGN(d("465000")))
}

func TestFormatDateUsesLagosTime(t *testing.T) {
	late := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "15/03/2025", FormatDate(late))
}

func TestSummaryTextStatusAndDiscount(t *testing.T) {
	inv := testInvoice()
	inv.Status = models.StatusPaid
	assert.Contains(t, SummaryText(inv, testBusiness), "PAID IN FULL")

	inv.Status = models.StatusCancelled
	assert.Contains(t, SummaryText(inv, testBusiness), "CANCELLED")

	inv.DiscountAmount = decimal.Zero
	inv.DiscountPercent = decimal.Zero
	assert.NotContains(t, SummaryText(inv, testBusiness), "Discount")
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink(testInvoice(), testBusiness)

	require.True(t, strings.HasPrefix(link, "https://wa.me/2348012345678?text="), link)
	assert.NotContains(t, link, "+")
	assert.NotContains(t, link, " ")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, SummaryText(testInvoice(), testBusiness), u.Query().Get("text"))
}

func TestTelegramLink(t *testing.T) {
	link := TelegramLink(testInvoice(), testBusiness)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "t.me", u.Host)
	assert.Equal(t, "/share/url", u.Path)
	assert.Equal(t, "Threm Multilinks Venture Invoice", u.Query().Get("url"))
	assert.Contains(t, u.Query().Get("text"), "TMV-482913-007")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Invoice-TMV-482913-007.pdf", FileName(testInvoice(), FormatPDF))
	assert.Equal(t, "Invoice-TMV-482913-007.png", FileName(testInvoice(), FormatPNG))

	f, err := ParseFormat("IMAGE")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	exp := NewExporter(testBusiness)

	statuses := []models.Status{models.StatusPending, models.StatusPaid, models.StatusCancelled}
	for _, status := range statuses {
		inv := testInvoice()
		inv.Status = status
		inv.Notes = "Deliver before noon"

		path, err := exp.Export(context.Background(), inv, FormatPDF, dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "Invoice-TMV-482913-007.pdf"), path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "pdf header")

		path, err = exp.Export(context.Background(), inv, FormatPNG, dir)
		require.NoError(t, err)
		f, err := os.Open(path)
		require.NoError(t, err)
		cfg, err := png.DecodeConfig(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, pngWidth*pngScale, cfg.Width)
	}
}

func TestExportErrors(t *testing.T) {
	exp := NewExporter(testBusiness)

	_, err := exp.Export(context.Background(), testInvoice(), Format("docx"), t.TempDir())
	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "TMV-482913-007", exportErr.Invoice)

	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	_, err = exp.Export(context.Background(), testInvoice(), FormatPDF, blocker)
	assert.ErrorIs(t, err, ErrWriteFailed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = exp.Export(ctx, testInvoice(), FormatPDF, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
