package billing

import "github.com/shopspring/decimal"

var kwhPerMWh = decimal.NewFromInt(1000)

// Quantities are the four charge-category quantities derived from one pair
// of consecutive index readings. A fresh value is built per derivation and
// never shared across calls.
type Quantities struct {
	// Consumption is the raw monthly consumption in kWh.
	Consumption decimal.Decimal
	// Energy is the billed energy in kWh, equal to Consumption.
	Energy decimal.Decimal
	// Excise is the non-commercial excise quantity in MWh.
	Excise decimal.Decimal
	// Certificate is the green-certificate quantity in MWh.
	Certificate decimal.Decimal
	// Rebate is the OUG-27 quantity in kWh, negative by regulatory
	// convention: the category is a rebate, not a charge.
	Rebate decimal.Decimal
}

// DeriveConsumption turns a new meter index and the previous month's index
// into charge-category quantities. A customer's first-ever reading has no
// previous index and establishes a zero baseline, so the index itself is the
// consumption. Returns ErrNegativeConsumption when the new index is below
// the previous one; callers must surface this before any persistence.
func DeriveConsumption(newIndex decimal.Decimal, previousIndex decimal.Decimal, hasPrevious bool) (Quantities, error) {
	consumption := newIndex
	if hasPrevious {
		consumption = newIndex.Sub(previousIndex)
	}
	if consumption.Sign() < 0 {
		return Quantities{}, ErrNegativeConsumption
	}

	excise := consumption.Div(kwhPerMWh)
	return Quantities{
		Consumption: consumption,
		Energy:      consumption,
		Excise:      excise,
		Certificate: excise,
		Rebate:      consumption.Neg(),
	}, nil
}
