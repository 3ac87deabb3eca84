package invoice

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// A k/m suffix only scales the number when no letter follows it, so
	// "15k" is 15000 while "15kg" and "9000NGN" keep their leading number.
	amountPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)(?:\s*([kKmM])(?:[^A-Za-z]|$))?`)
	thousand      = decimal.NewFromInt(1000)
	million       = decimal.NewFromInt(1000000)

	currencyPrefixes = []string{"₦", "NGN", "ngn", "N"}

	maxQuantity = decimal.NewFromInt(math.MaxInt32)
)

// ParseAmount reads a money or count value the way an operator types it:
// "9000", "9,000", "₦9,000.50", "15k", "1.2m", "50 bags", "15kg". Text after
// the leading number is ignored. It reports false when no leading number is found.
func ParseAmount(value string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(value)
	for _, prefix := range currencyPrefixes {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	m := amountPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		amount = amount.Mul(thousand)
	case "m":
		amount = amount.Mul(million)
	}
	return amount, true
}

// AmountOrZero parses value with ParseAmount and defaults to zero on failure
// or on a negative result.
func AmountOrZero(value string) decimal.Decimal {
	amount, ok := ParseAmount(value)
	if !ok || amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// QuantityOrZero parses a bag count, truncating fractions and defaulting to zero.
func QuantityOrZero(value string) int {
	return quantity(AmountOrZero(value))
}

// quantity truncates d to a bag count. Negative counts and counts above
// math.MaxInt32 are treated as unreadable and become zero.
func quantity(d decimal.Decimal) int {
	if d.IsNegative() || d.GreaterThan(maxQuantity) {
		return 0
	}
	return int(d.IntPart())
}
