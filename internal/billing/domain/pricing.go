package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Charge categories on a bill, in invoice order.
const (
	CategoryEnergy      = "energie_consumata"
	CategoryExcise      = "acciza_necomerciala"
	CategoryCertificate = "certificate_verzi"
	CategoryRebate      = "oug_27"
)

// CategoryLabels maps charge categories to their invoice display names.
var CategoryLabels = map[string]string{
	CategoryEnergy:      "Energie consumata",
	CategoryExcise:      "Acciza necomerciala",
	CategoryCertificate: "Certificate verzi",
	CategoryRebate:      "OUG 27",
}

// CategoryUnits maps charge categories to their measurement units.
var CategoryUnits = map[string]string{
	CategoryEnergy:      "kWh",
	CategoryExcise:      "MWh",
	CategoryCertificate: "MWh",
	CategoryRebate:      "kWh",
}

// PriceTable is an immutable set of per-unit prices and the VAT rate.
// It is injected into the calculation pipeline at construction time;
// price changes ship as configuration, never as runtime mutation.
type PriceTable struct {
	Energy      decimal.Decimal
	Excise      decimal.Decimal
	Certificate decimal.Decimal
	Rebate      decimal.Decimal
	VATRate     decimal.Decimal
}

// DefaultPriceTable returns the regulated unit prices currently in force.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		Energy:      decimal.RequireFromString("1.40182"),
		Excise:      decimal.RequireFromString("6.05"),
		Certificate: decimal.RequireFromString("71.68059"),
		Rebate:      decimal.RequireFromString("0.90812"),
		VATRate:     decimal.RequireFromString("0.19"),
	}
}

// Validate checks the table is usable. Unit prices must be positive;
// the rebate sign convention lives on the quantity, not the price.
func (t PriceTable) Validate() error {
	for _, price := range []decimal.Decimal{t.Energy, t.Excise, t.Certificate, t.Rebate} {
		if price.Sign() <= 0 {
			return errors.New("billing: unit price must be positive")
		}
	}
	if t.VATRate.Sign() < 0 || t.VATRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return errors.New("billing: vat rate out of range")
	}
	return nil
}

// UnitPrice returns the per-unit price for a charge category.
func (t PriceTable) UnitPrice(category string) (decimal.Decimal, error) {
	switch category {
	case CategoryEnergy:
		return t.Energy, nil
	case CategoryExcise:
		return t.Excise, nil
	case CategoryCertificate:
		return t.Certificate, nil
	case CategoryRebate:
		return t.Rebate, nil
	default:
		return decimal.Decimal{}, errors.New("billing: unknown charge category")
	}
}

// ChargeLine is one priced charge category.
type ChargeLine struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Value     decimal.Decimal
	VAT       decimal.Decimal
}

// Breakdown is the full priced result for one bill: the four charge lines
// plus the aggregate totals. Values carry full precision; two-decimal
// rounding is applied at render time only.
type Breakdown struct {
	Energy      ChargeLine
	Excise      ChargeLine
	Certificate ChargeLine
	Rebate      ChargeLine

	TotalPreVAT decimal.Decimal
	TotalVAT    decimal.Decimal
	GrandTotal  decimal.Decimal
}

// CalculatePrices applies the price table to derived quantities.
// Pure arithmetic: a fresh Breakdown is built on every call.
func CalculatePrices(q Quantities, table PriceTable) Breakdown {
	energy := priceLine(q.Energy, table.Energy, table.VATRate)
	excise := priceLine(q.Excise, table.Excise, table.VATRate)
	certificate := priceLine(q.Certificate, table.Certificate, table.VATRate)
	rebate := priceLine(q.Rebate, table.Rebate, table.VATRate)

	preVAT := energy.Value.Add(excise.Value).Add(certificate.Value).Add(rebate.Value)
	vat := energy.VAT.Add(excise.VAT).Add(certificate.VAT).Add(rebate.VAT)

	return Breakdown{
		Energy:      energy,
		Excise:      excise,
		Certificate: certificate,
		Rebate:      rebate,
		TotalPreVAT: preVAT,
		TotalVAT:    vat,
		GrandTotal:  preVAT.Add(vat),
	}
}

func priceLine(quantity, unitPrice, vatRate decimal.Decimal) ChargeLine {
	value := quantity.Mul(unitPrice)
	return ChargeLine{
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Value:     value,
		VAT:       value.Mul(vatRate),
	}
}
