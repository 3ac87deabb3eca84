package export

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"invoicer/pkg/models"
)

const rule = "----------------------------------"

// StatusLabel is the headline shown for a payment status.
func StatusLabel(s models.Status) string {
	switch s {
	case models.StatusPaid:
		return "PAID IN FULL"
	case models.StatusCancelled:
		return "CANCELLED"
	default:
		return "PAYMENT PENDING"
	}
}

func statusBadge(s models.Status) string {
	switch s {
	case models.StatusPaid:
		return "✅ *" + StatusLabel(s) + "*"
	case models.StatusCancelled:
		return "❌ *" + StatusLabel(s) + "*"
	default:
		return "⏳ *" + StatusLabel(s) + "*"
	}
}

// SummaryText renders the invoice as a chat message using WhatsApp
// emphasis markup. The discount line appears only for a nonzero discount.
func SummaryText(inv models.Invoice, business Business) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*INVOICE FROM %s*\n", strings.ToUpper(business.displayName()))
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "*Invoice:* %s\n", inv.InvoiceNumber)
	fmt.Fprintf(&b, "*Status:* %s\n", statusBadge(inv.Status))
	fmt.Fprintf(&b, "*Customer:* %s\n", inv.Customer.Name)
	fmt.Fprintf(&b, "*Date:* %s\n", FormatDate(inv.Date))
	b.WriteString(rule + "\n")
	b.WriteString("*Items:*\n")
	for _, item := range inv.Items {
		fmt.Fprintf(&b, "%d bags of %s @ %s\n", item.Quantity, item.Description, FormatNaira(item.UnitPrice))
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "*Subtotal:* %s\n", FormatNaira(inv.Subtotal))
	if !inv.DiscountAmount.IsZero() {
		fmt.Fprintf(&b, "*Discount (%s%%):* -%s\n", inv.DiscountPercent.String(), FormatNaira(inv.DiscountAmount))
	}
	fmt.Fprintf(&b, "*Delivery:* %s\n", FormatNaira(inv.DeliveryFee))
	fmt.Fprintf(&b, "*TOTAL:* %s\n", FormatNaira(inv.TotalAmount))
	b.WriteString(rule + "\n")
	b.WriteString("_Thank you for your business!_")

	return b.String()
}

var nonDigits = regexp.MustCompile(`\D`)

// PhoneDigits strips everything but digits from a phone number.
func PhoneDigits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// escape percent-encodes like encodeURIComponent: spaces become %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// WhatsAppLink returns a wa.me deep link that opens a chat with the customer
// with the summary prefilled. Without a phone number WhatsApp asks for a contact.
func WhatsAppLink(inv models.Invoice, business Business) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", PhoneDigits(inv.Customer.Phone), escape(SummaryText(inv, business)))
}

// TelegramLink returns a t.me share link carrying the summary.
func TelegramLink(inv models.Invoice, business Business) string {
	title := business.displayName() + " Invoice"
	return fmt.Sprintf("https://t.me/share/url?url=%s&text=%s", escape(title), escape(SummaryText(inv, business)))
}
