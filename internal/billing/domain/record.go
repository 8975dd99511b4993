package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillRecord is one ledger entry: the meter reading and derived billing
// values for a (customer, year, month) key. Unit prices are snapshotted onto
// the record at derivation time so the invoice always renders what was
// billed. The key never changes once created; an amendment overwrites the
// index and every derived field in place.
type BillRecord struct {
	CustomerID int64
	Username   string
	BillYear   int
	BillMonth  int

	Serial    string
	Number    string
	Generated time.Time
	Due       time.Time
	Start     time.Time
	End       time.Time

	IndexValue decimal.Decimal

	EnergyQty        decimal.Decimal
	EnergyPrice      decimal.Decimal
	EnergyValue      decimal.Decimal
	EnergyVAT        decimal.Decimal
	ExciseQty        decimal.Decimal
	ExcisePrice      decimal.Decimal
	ExciseValue      decimal.Decimal
	ExciseVAT        decimal.Decimal
	CertificateQty   decimal.Decimal
	CertificatePrice decimal.Decimal
	CertificateValue decimal.Decimal
	CertificateVAT   decimal.Decimal
	RebateQty        decimal.Decimal
	RebatePrice      decimal.Decimal
	RebateValue      decimal.Decimal
	RebateVAT        decimal.Decimal

	TotalPreVAT decimal.Decimal
	TotalVAT    decimal.Decimal
	GrandTotal  decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBillRecord assembles a fully derived ledger entry. Period, identity and
// priced breakdown are computed once by the caller and passed by value; the
// record never recomputes them.
func NewBillRecord(customerID int64, username string, year, month int, index decimal.Decimal, period Period, identity Identity, breakdown Breakdown, now time.Time) *BillRecord {
	record := &BillRecord{
		CustomerID: customerID,
		Username:   username,
		BillYear:   year,
		BillMonth:  month,
		Serial:     identity.Serial,
		Number:     identity.Number,
		Generated:  period.Generated,
		Due:        period.Due,
		Start:      period.Start,
		End:        period.End,
		IndexValue: index,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	record.applyBreakdown(breakdown)
	return record
}

// Amend overwrites the index value and all derived monetary fields.
// The (customer, year, month) key, the bill identity and the period dates
// are tied to the original bill month and stay untouched.
func (r *BillRecord) Amend(index decimal.Decimal, breakdown Breakdown, now time.Time) {
	r.IndexValue = index
	r.applyBreakdown(breakdown)
	r.UpdatedAt = now
}

func (r *BillRecord) applyBreakdown(b Breakdown) {
	r.EnergyQty = b.Energy.Quantity
	r.EnergyPrice = b.Energy.UnitPrice
	r.EnergyValue = b.Energy.Value
	r.EnergyVAT = b.Energy.VAT
	r.ExciseQty = b.Excise.Quantity
	r.ExcisePrice = b.Excise.UnitPrice
	r.ExciseValue = b.Excise.Value
	r.ExciseVAT = b.Excise.VAT
	r.CertificateQty = b.Certificate.Quantity
	r.CertificatePrice = b.Certificate.UnitPrice
	r.CertificateValue = b.Certificate.Value
	r.CertificateVAT = b.Certificate.VAT
	r.RebateQty = b.Rebate.Quantity
	r.RebatePrice = b.Rebate.UnitPrice
	r.RebateValue = b.Rebate.Value
	r.RebateVAT = b.Rebate.VAT
	r.TotalPreVAT = b.TotalPreVAT
	r.TotalVAT = b.TotalVAT
	r.GrandTotal = b.GrandTotal
}

// Breakdown rebuilds the priced breakdown from the stored fields, using the
// snapshotted unit prices. Recomputing it from the stored index and previous
// index must reproduce these values bit for bit.
func (r *BillRecord) Breakdown() Breakdown {
	return Breakdown{
		Energy:      ChargeLine{Quantity: r.EnergyQty, UnitPrice: r.EnergyPrice, Value: r.EnergyValue, VAT: r.EnergyVAT},
		Excise:      ChargeLine{Quantity: r.ExciseQty, UnitPrice: r.ExcisePrice, Value: r.ExciseValue, VAT: r.ExciseVAT},
		Certificate: ChargeLine{Quantity: r.CertificateQty, UnitPrice: r.CertificatePrice, Value: r.CertificateValue, VAT: r.CertificateVAT},
		Rebate:      ChargeLine{Quantity: r.RebateQty, UnitPrice: r.RebatePrice, Value: r.RebateValue, VAT: r.RebateVAT},
		TotalPreVAT: r.TotalPreVAT,
		TotalVAT:    r.TotalVAT,
		GrandTotal:  r.GrandTotal,
	}
}

// Clone returns a detached copy.
func (r *BillRecord) Clone() *BillRecord {
	if r == nil {
		return nil
	}
	copy := *r
	return &copy
}
