package ledger

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/khata-ledger/internal/domain/shared"
)

// DefaultCurrency is used when no currency is configured
const DefaultCurrency = "INR"

// defaultFraction is the number of decimals shown for currencies go-money does not know
const defaultFraction = 2

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// Fraction returns how many decimal places the currency's minor unit allows
func Fraction(currency string) int32 {
	if cur := money.GetCurrency(strings.ToUpper(currency)); cur != nil {
		return int32(cur.Fraction)
	}
	return defaultFraction
}

// CheckScale rejects amounts finer than the currency's minor unit, e.g. 0.001 rupees
func CheckScale(amount decimal.Decimal, currency string) error {
	if !amount.Equal(amount.Truncate(Fraction(currency))) {
		return shared.ValidationError{Field: "amount", Code: shared.CodeInvalidAmount}
	}
	return nil
}

// FormatAmount renders amount in the currency's display format, e.g. "₹1,500.00".
// Unknown currency codes fall back to a plain two-decimal rendering.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return amount.StringFixed(defaultFraction) + " " + currency
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return formatMinor(minor, cur)
	}
	return money.New(minor.IntPart(), cur.Code).Display()
}

// formatMinor lays out minor units beyond int64 with the same template, separators and
// grapheme go-money uses
func formatMinor(minor decimal.Decimal, cur *money.Currency) string {
	sa := minor.Abs().String()
	if len(sa) <= cur.Fraction {
		sa = strings.Repeat("0", cur.Fraction-len(sa)+1) + sa
	}

	if cur.Thousand != "" {
		for i := len(sa) - cur.Fraction - 3; i > 0; i -= 3 {
			sa = sa[:i] + cur.Thousand + sa[i:]
		}
	}
	if cur.Fraction > 0 {
		sa = sa[:len(sa)-cur.Fraction] + cur.Decimal + sa[len(sa)-cur.Fraction:]
	}

	sa = strings.Replace(cur.Template, "1", sa, 1)
	sa = strings.Replace(sa, "$", cur.Grapheme, 1)
	if minor.IsNegative() {
		sa = "-" + sa
	}
	return sa
}
