package billing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculatePrices(t *testing.T) {
	table := PriceTable{
		Energy:      decimal.RequireFromString("1.5"),
		Excise:      decimal.RequireFromString("6"),
		Certificate: decimal.RequireFromString("70"),
		Rebate:      decimal.RequireFromString("0.9"),
		VATRate:     decimal.RequireFromString("0.19"),
	}
	q, err := DeriveConsumption(decimal.NewFromInt(100), decimal.Decimal{}, false)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}

	b := CalculatePrices(q, table)

	if !b.Energy.Value.Equal(decimal.RequireFromString("150")) {
		t.Errorf("energy value = %s, want 150", b.Energy.Value)
	}
	if !b.Energy.VAT.Equal(decimal.RequireFromString("28.5")) {
		t.Errorf("energy vat = %s, want 28.5", b.Energy.VAT)
	}
	if !b.Excise.Value.Equal(decimal.RequireFromString("0.6")) {
		t.Errorf("excise value = %s, want 0.6", b.Excise.Value)
	}
	if !b.Certificate.Value.Equal(decimal.RequireFromString("7")) {
		t.Errorf("certificate value = %s, want 7", b.Certificate.Value)
	}
	if !b.Rebate.Value.Equal(decimal.RequireFromString("-90")) {
		t.Errorf("rebate value = %s, want -90", b.Rebate.Value)
	}

	wantPreVAT := decimal.RequireFromString("67.6")
	if !b.TotalPreVAT.Equal(wantPreVAT) {
		t.Errorf("total pre-vat = %s, want %s", b.TotalPreVAT, wantPreVAT)
	}
	if !b.TotalVAT.Equal(wantPreVAT.Mul(table.VATRate)) {
		t.Errorf("total vat = %s, want %s", b.TotalVAT, wantPreVAT.Mul(table.VATRate))
	}
	if !b.GrandTotal.Equal(b.TotalPreVAT.Add(b.TotalVAT)) {
		t.Errorf("grand total = %s, want pre-vat + vat", b.GrandTotal)
	}
}

func TestCalculatePricesReproducible(t *testing.T) {
	table := DefaultPriceTable()
	q, err := DeriveConsumption(decimal.NewFromInt(862), decimal.NewFromInt(740), true)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	first := CalculatePrices(q, table)
	second := CalculatePrices(q, table)
	if !first.GrandTotal.Equal(second.GrandTotal) || !first.TotalPreVAT.Equal(second.TotalPreVAT) || !first.TotalVAT.Equal(second.TotalVAT) {
		t.Fatalf("recomputation not reproducible: %+v vs %+v", first, second)
	}
}

func TestDefaultPriceTableValid(t *testing.T) {
	if err := DefaultPriceTable().Validate(); err != nil {
		t.Fatalf("default price table invalid: %v", err)
	}
}

func TestPriceTableValidate(t *testing.T) {
	table := DefaultPriceTable()
	table.Energy = decimal.Zero
	if err := table.Validate(); err == nil {
		t.Fatal("expected error for zero unit price")
	}

	table = DefaultPriceTable()
	table.VATRate = decimal.NewFromInt(1)
	if err := table.Validate(); err == nil {
		t.Fatal("expected error for vat rate >= 1")
	}
}

func TestUnitPrice(t *testing.T) {
	table := DefaultPriceTable()
	price, err := table.UnitPrice(CategoryCertificate)
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if !price.Equal(table.Certificate) {
		t.Fatalf("unit price = %s, want %s", price, table.Certificate)
	}
	if _, err := table.UnitPrice("penalitati"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
