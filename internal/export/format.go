package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Lagos is West Africa Time. Invoice dates are stored in UTC and shown in WAT.
var Lagos = time.FixedZone("WAT", 60*60)

var printer = message.NewPrinter(language.English)

// FormatNaira renders an amount as ₦1,234.00.
func FormatNaira(amount decimal.Decimal) string {
	return formatMoney("₦", amount)
}

// FormatNGN renders an amount as NGN 1,234.00 for outputs whose fonts lack the naira sign.
func FormatNGN(amount decimal.Decimal) string {
	return formatMoney("NGN ", amount)
}

func formatMoney(symbol string, amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		// Beyond int64: fall back to ungrouped digits.
		return sign + symbol + fixed
	}
	return sign + symbol + printer.Sprintf("%d", n) + "." + frac
}

// FormatDate renders the invoice date as dd/mm/yyyy in Lagos time.
func FormatDate(t time.Time) string {
	return t.In(Lagos).Format("02/01/2006")
}

// Business identifies the seller printed on every invoice.
type Business struct {
	Name    string
	Tagline string
	Address string
	Phone   string
}

func (b Business) displayName() string {
	if strings.TrimSpace(b.Name) == "" {
		return "Threm Multilinks Venture"
	}
	return b.Name
}
