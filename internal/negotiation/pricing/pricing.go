// Package pricing derives the numeric figures quoted during a negotiation:
// rate on line, the monetary value of enhancements, and the total cost.
//
// All functions are pure and safe for concurrent use. Divide-by-zero guards
// return a deliberate zero sentinel rather than an error; the string variants
// additionally render the "not applicable" tokens the rest of the system
// displays verbatim. The "n/a" vs "N/A" casing difference between
// EnhancementValueString and TotalString is an externally observable contract,
// not a typo.
package pricing

import (
	"github.com/shopspring/decimal"

	"dealdesk/internal/negotiation/models"
)

var hundred = decimal.NewFromInt(100)

// RateOnLine returns the premium as a percentage of the insured limit:
// premium / (enterpriseValue * limit.UpperBound) * 100. Returns zero when the
// enterprise value, premium, or upper bound is zero.
func RateOnLine(enterpriseValue, premium models.Money, limit models.Limit) decimal.Decimal {
	if enterpriseValue.IsZero() || premium.IsZero() || limit.UpperBound.IsZero() {
		return decimal.Zero
	}
	insured := enterpriseValue.Amount.Mul(limit.UpperBound)
	return premium.Amount.Div(insured).Mul(hundred)
}

// EnhancementValue returns the summed monetary impact of the enhancements:
// sum(premium * enhancement.Value). Returns zero when the premium is zero or
// the list is empty.
func EnhancementValue(premium models.Money, enhancements []models.Enhancement) decimal.Decimal {
	if premium.IsZero() || len(enhancements) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, e := range enhancements {
		total = total.Add(premium.Amount.Mul(e.Value))
	}
	return total
}

// EnhancementValueString formats EnhancementValue to at most two decimal
// places with trailing zeros trimmed ("150", not "150.00"). It returns the
// literal "n/a" when the result is zero because the premium is zero: a true
// zero result still renders as "0".
func EnhancementValueString(premium models.Money, enhancements []models.Enhancement) string {
	value := EnhancementValue(premium, enhancements)
	if value.IsZero() && premium.IsZero() {
		return "n/a"
	}
	return value.Round(2).String()
}

// Total returns premium + enhancement value + underwriting fee.
func Total(premium models.Money, enhancements []models.Enhancement, uwFee models.Money) decimal.Decimal {
	return premium.Amount.
		Add(EnhancementValue(premium, enhancements)).
		Add(uwFee.Amount)
}

// TotalString formats Total to at most two decimal places with trailing zeros
// trimmed. It returns the literal "N/A" (distinct token from the
// enhancement-value case) when premium and underwriting fee are both zero.
func TotalString(premium models.Money, enhancements []models.Enhancement, uwFee models.Money) string {
	if premium.IsZero() && uwFee.IsZero() {
		return "N/A"
	}
	return Total(premium, enhancements, uwFee).Round(2).String()
}
