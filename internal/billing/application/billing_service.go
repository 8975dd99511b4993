package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	billing "greenergy-billing/internal/billing/domain"
	customer "greenergy-billing/internal/customer/domain"
	"greenergy-billing/internal/observability/metrics"
)

// CustomerDirectory resolves customer accounts for identity assignment.
type CustomerDirectory interface {
	GetByUsername(ctx context.Context, username string) (*customer.Customer, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ConsumptionPreview is the result shown to the operator before commit.
type ConsumptionPreview struct {
	Username      string
	BillYear      int
	BillMonth     int
	NewIndex      decimal.Decimal
	PreviousIndex decimal.Decimal
	HasPrevious   bool
	Quantities    billing.Quantities
}

// BillingService drives the meter reading ledger: preview, create, amend and
// read of monthly bill records. All derivations run before any write; a
// failed derivation never starts a transaction.
type BillingService struct {
	ledger    billing.Repository
	customers CustomerDirectory
	prices    billing.PriceTable
	clock     Clock
}

// NewBillingService constructs the service.
func NewBillingService(ledger billing.Repository, customers CustomerDirectory, prices billing.PriceTable, clock Clock) (*BillingService, error) {
	if ledger == nil {
		return nil, errors.New("billing service: nil ledger repository")
	}
	if customers == nil {
		return nil, errors.New("billing service: nil customer directory")
	}
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &BillingService{ledger: ledger, customers: customers, prices: prices, clock: clock}, nil
}

// PriceTable returns the injected price table.
func (s *BillingService) PriceTable() billing.PriceTable { return s.prices }

// PreviewConsumption derives the consumption a candidate index would yield,
// without writing anything. The operator confirms this preview before the
// record is created or amended; a negative consumption is rejected here.
func (s *BillingService) PreviewConsumption(ctx context.Context, username string, year, month int, index decimal.Decimal) (ConsumptionPreview, error) {
	if _, err := billing.CalculatePeriod(year, month); err != nil {
		return ConsumptionPreview{}, err
	}
	previous, found, err := s.ledger.PreviousIndex(ctx, username, year, month)
	if err != nil {
		return ConsumptionPreview{}, wrapKey(err, username, year, month)
	}
	quantities, err := billing.DeriveConsumption(index, previous, found)
	if err != nil {
		return ConsumptionPreview{}, wrapKey(err, username, year, month)
	}
	return ConsumptionPreview{
		Username:      username,
		BillYear:      year,
		BillMonth:     month,
		NewIndex:      index,
		PreviousIndex: previous,
		HasPrevious:   found,
		Quantities:    quantities,
	}, nil
}

// CreateBillRecord inserts the ledger entry for a new monthly reading.
// Fails with ErrDuplicateRecord when the (customer, year, month) key already
// holds a record; amendments go through AmendBillRecord.
func (s *BillingService) CreateBillRecord(ctx context.Context, username string, year, month int, index decimal.Decimal) (*billing.BillRecord, error) {
	start := s.clock.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveBillCreate(result, time.Since(start))
	}()

	record, err := s.createBillRecord(ctx, username, year, month, index)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return record, nil
}

func (s *BillingService) createBillRecord(ctx context.Context, username string, year, month int, index decimal.Decimal) (*billing.BillRecord, error) {
	period, err := billing.CalculatePeriod(year, month)
	if err != nil {
		return nil, err
	}

	existing, err := s.ledger.Get(ctx, username, year, month)
	if err != nil && !errors.Is(err, billing.ErrRecordNotFound) {
		return nil, wrapKey(err, username, year, month)
	}
	if existing != nil {
		return nil, wrapKey(billing.ErrDuplicateRecord, username, year, month)
	}

	account, err := s.customers.GetByUsername(ctx, username)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}

	previous, found, err := s.ledger.PreviousIndex(ctx, username, year, month)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}
	quantities, err := billing.DeriveConsumption(index, previous, found)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}
	breakdown := billing.CalculatePrices(quantities, s.prices)

	identity, err := billing.AssignIdentity(account.County, account.ID, period.Generated)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}

	record := billing.NewBillRecord(account.ID, username, year, month, index, period, identity, breakdown, s.clock.Now())
	if err := s.ledger.Insert(ctx, record); err != nil {
		return nil, wrapKey(err, username, year, month)
	}
	return record, nil
}

// AmendBillRecord overwrites the index value of an existing record and
// recomputes every derived field with the current price table. Bill identity
// and period dates stay tied to the original bill month. Only the customer's
// latest reading can be amended: rewriting an older one could leave the
// stored index sequence decreasing.
func (s *BillingService) AmendBillRecord(ctx context.Context, username string, year, month int, index decimal.Decimal) (*billing.BillRecord, error) {
	start := s.clock.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveBillAmend(result, time.Since(start))
	}()

	record, err := s.amendBillRecord(ctx, username, year, month, index)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return record, nil
}

func (s *BillingService) amendBillRecord(ctx context.Context, username string, year, month int, index decimal.Decimal) (*billing.BillRecord, error) {
	record, err := s.ledger.Get(ctx, username, year, month)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}

	latestYear, latestMonth, found, err := s.ledger.LatestPeriod(ctx, username)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}
	if !found || latestYear != year || latestMonth != month {
		return nil, wrapKey(billing.ErrNotLatestRecord, username, year, month)
	}

	previous, found, err := s.ledger.PreviousIndex(ctx, username, year, month)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}
	quantities, err := billing.DeriveConsumption(index, previous, found)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}
	breakdown := billing.CalculatePrices(quantities, s.prices)

	record.Amend(index, breakdown, s.clock.Now())
	if err := s.ledger.Update(ctx, record); err != nil {
		return nil, wrapKey(err, username, year, month)
	}
	return record, nil
}

// GetBillRecord reads one ledger entry.
func (s *BillingService) GetBillRecord(ctx context.Context, username string, year, month int) (*billing.BillRecord, error) {
	if _, err := billing.CalculatePeriod(year, month); err != nil {
		return nil, err
	}
	record, err := s.ledger.Get(ctx, username, year, month)
	if err != nil {
		return nil, wrapKey(err, username, year, month)
	}
	return record, nil
}

// ListYear reads a customer's records for a year ordered by month.
func (s *BillingService) ListYear(ctx context.Context, username string, year int) ([]*billing.BillRecord, error) {
	records, err := s.ledger.ListYear(ctx, username, year)
	if err != nil {
		return nil, fmt.Errorf("customer %q year %d: %w", username, year, err)
	}
	return records, nil
}

// wrapKey adds the (customer, year, month) key to an error so the operator
// can retry with full context.
func wrapKey(err error, username string, year, month int) error {
	return fmt.Errorf("customer %q %d-%02d: %w", username, year, month, err)
}
