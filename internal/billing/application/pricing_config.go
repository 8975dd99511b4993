package application

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	billing "greenergy-billing/internal/billing/domain"
)

// PricingFile is the yaml shape of a price table override.
type PricingFile struct {
	EnergyPrice      string `yaml:"energie_consumata"`
	ExcisePrice      string `yaml:"acciza_necomerciala"`
	CertificatePrice string `yaml:"certificate_verzi"`
	RebatePrice      string `yaml:"oug_27"`
	VATRate          string `yaml:"tva"`
}

// LoadPriceTable returns the compiled-in regulated prices, overridden by the
// yaml file at PRICING_CONFIG when set. Prices are parsed as decimal strings
// so no precision is lost on the way in.
func LoadPriceTable() (billing.PriceTable, error) {
	table := billing.DefaultPriceTable()

	path := os.Getenv("PRICING_CONFIG")
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("pricing config: %w", err)
	}
	var file PricingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return table, fmt.Errorf("pricing config: %w", err)
	}

	if err := override(&table.Energy, file.EnergyPrice); err != nil {
		return table, err
	}
	if err := override(&table.Excise, file.ExcisePrice); err != nil {
		return table, err
	}
	if err := override(&table.Certificate, file.CertificatePrice); err != nil {
		return table, err
	}
	if err := override(&table.Rebate, file.RebatePrice); err != nil {
		return table, err
	}
	if err := override(&table.VATRate, file.VATRate); err != nil {
		return table, err
	}

	if err := table.Validate(); err != nil {
		return table, err
	}
	return table, nil
}

func override(target *decimal.Decimal, raw string) error {
	if raw == "" {
		return nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("pricing config: bad price %q: %w", raw, err)
	}
	*target = parsed
	return nil
}
