package models

import "github.com/shopspring/decimal"

// Limit expresses the insured limit as a lower/upper bound. Bounds are
// fractions (0.10 = 10%); OfEnterpriseValue marks whether the upper bound is a
// percentage of enterprise value or an absolute figure. Immutable value type.
type Limit struct {
	LowerBound        decimal.Decimal `json:"lower_bound"`
	UpperBound        decimal.Decimal `json:"upper_bound"`
	OfEnterpriseValue bool            `json:"of_enterprise_value"`
}

// NewLimit constructs a Limit value.
func NewLimit(lower, upper decimal.Decimal, ofEnterpriseValue bool) Limit {
	return Limit{LowerBound: lower, UpperBound: upper, OfEnterpriseValue: ofEnterpriseValue}
}

// Equal reports whether both bounds and the basis flag match.
func (l Limit) Equal(other Limit) bool {
	return l.OfEnterpriseValue == other.OfEnterpriseValue &&
		l.LowerBound.Equal(other.LowerBound) &&
		l.UpperBound.Equal(other.UpperBound)
}
