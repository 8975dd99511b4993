package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	billing "greenergy-billing/internal/billing/domain"
	"greenergy-billing/internal/billing/infrastructure/memory"
	customer "greenergy-billing/internal/customer/domain"
)

type stubDirectory struct {
	accounts map[string]*customer.Customer
}

func (s stubDirectory) GetByUsername(_ context.Context, username string) (*customer.Customer, error) {
	account, ok := s.accounts[username]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return account, nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (*BillingService, *memory.BillRepository) {
	t.Helper()
	ledger := memory.NewBillRepository()
	directory := stubDirectory{accounts: map[string]*customer.Customer{
		"ionpopescu": {
			ID:       7,
			Name:     "Ion Popescu",
			County:   "Cluj",
			City:     "Cluj-Napoca",
			Username: "ionpopescu",
			Role:     customer.RoleUser,
		},
	}}
	clock := fixedClock{now: time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)}
	service, err := NewBillingService(ledger, directory, billing.DefaultPriceTable(), clock)
	if err != nil {
		t.Fatalf("new billing service: %v", err)
	}
	return service, ledger
}

func TestCreateFirstReading(t *testing.T) {
	service, _ := newTestService(t)

	record, err := service.CreateBillRecord(context.Background(), "ionpopescu", 2024, 4, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !record.EnergyQty.Equal(decimal.NewFromInt(100)) {
		t.Errorf("energy = %s, want 100", record.EnergyQty)
	}
	if !record.ExciseQty.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("excise = %s, want 0.1", record.ExciseQty)
	}
	if !record.RebateQty.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("rebate = %s, want -100", record.RebateQty)
	}
	if record.Serial != "CJ" || record.Number != "010524000007" {
		t.Errorf("identity = %s %s", record.Serial, record.Number)
	}
}

func TestCreateUsesDecemberLookupAcrossYears(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2023, 12, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("create december: %v", err)
	}
	record, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 1, decimal.NewFromInt(560))
	if err != nil {
		t.Fatalf("create january: %v", err)
	}
	if !record.EnergyQty.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("january consumption = %s, want 60", record.EnergyQty)
	}
}

func TestCreateDuplicate(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(120))
	if !errors.Is(err, billing.ErrDuplicateRecord) {
		t.Fatalf("err = %v, want ErrDuplicateRecord", err)
	}
}

func TestCreateNegativeConsumptionWritesNothing(t *testing.T) {
	service, ledger := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 3, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("create march: %v", err)
	}
	_, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(480))
	if !errors.Is(err, billing.ErrNegativeConsumption) {
		t.Fatalf("err = %v, want ErrNegativeConsumption", err)
	}
	if _, err := ledger.Get(ctx, "ionpopescu", 2024, 4); !errors.Is(err, billing.ErrRecordNotFound) {
		t.Fatalf("rejected record was persisted: %v", err)
	}
}

func TestCreateUnknownCustomer(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.CreateBillRecord(context.Background(), "necunoscut", 2024, 4, decimal.NewFromInt(10))
	if !errors.Is(err, customer.ErrNotFound) {
		t.Fatalf("err = %v, want customer.ErrNotFound", err)
	}
}

func TestCreateInvalidPeriod(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.CreateBillRecord(context.Background(), "ionpopescu", 2024, 13, decimal.NewFromInt(10))
	if !errors.Is(err, billing.ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestAmendRecomputesButKeepsIdentity(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 3, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("create march: %v", err)
	}
	created, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(560))
	if err != nil {
		t.Fatalf("create april: %v", err)
	}

	amended, err := service.AmendBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(590))
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if !amended.EnergyQty.Equal(decimal.NewFromInt(90)) {
		t.Errorf("amended energy = %s, want 90", amended.EnergyQty)
	}
	if amended.Serial != created.Serial || amended.Number != created.Number {
		t.Errorf("amend changed identity: %s %s", amended.Serial, amended.Number)
	}
	if !amended.Start.Equal(created.Start) || !amended.Due.Equal(created.Due) {
		t.Errorf("amend changed period dates")
	}

	stored, err := service.GetBillRecord(ctx, "ionpopescu", 2024, 4)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.IndexValue.Equal(decimal.NewFromInt(590)) {
		t.Errorf("stored index = %s, want 590", stored.IndexValue)
	}
}

func TestAmendMissingRecord(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.AmendBillRecord(context.Background(), "ionpopescu", 2024, 4, decimal.NewFromInt(100))
	if !errors.Is(err, billing.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestAmendOlderReadingRejected(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 3, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("create march: %v", err)
	}
	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(560)); err != nil {
		t.Fatalf("create april: %v", err)
	}

	// Rewriting March above April's stored index would turn the ledger into
	// a decreasing sequence; only the latest reading may be amended.
	_, err := service.AmendBillRecord(ctx, "ionpopescu", 2024, 3, decimal.NewFromInt(1000))
	if !errors.Is(err, billing.ErrNotLatestRecord) {
		t.Fatalf("err = %v, want ErrNotLatestRecord", err)
	}
	stored, err := service.GetBillRecord(ctx, "ionpopescu", 2024, 3)
	if err != nil {
		t.Fatalf("get march: %v", err)
	}
	if !stored.IndexValue.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("stored march index = %s, want unchanged 500", stored.IndexValue)
	}

	// The latest reading remains amendable.
	amended, err := service.AmendBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(590))
	if err != nil {
		t.Fatalf("amend april: %v", err)
	}
	if !amended.EnergyQty.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("amended energy = %s, want 90", amended.EnergyQty)
	}
}

func TestAmendAcrossYearBoundaryRejected(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2023, 12, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("create december: %v", err)
	}
	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 1, decimal.NewFromInt(560)); err != nil {
		t.Fatalf("create january: %v", err)
	}

	_, err := service.AmendBillRecord(ctx, "ionpopescu", 2023, 12, decimal.NewFromInt(600))
	if !errors.Is(err, billing.ErrNotLatestRecord) {
		t.Fatalf("err = %v, want ErrNotLatestRecord", err)
	}
}

func TestAmendNegativeConsumptionKeepsStoredRecord(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 3, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("create march: %v", err)
	}
	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(560)); err != nil {
		t.Fatalf("create april: %v", err)
	}

	_, err := service.AmendBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(490))
	if !errors.Is(err, billing.ErrNegativeConsumption) {
		t.Fatalf("err = %v, want ErrNegativeConsumption", err)
	}
	stored, err := service.GetBillRecord(ctx, "ionpopescu", 2024, 4)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.IndexValue.Equal(decimal.NewFromInt(560)) {
		t.Fatalf("stored index = %s, want unchanged 560", stored.IndexValue)
	}
}

func TestPreviewConsumption(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	preview, err := service.PreviewConsumption(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(250))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.HasPrevious {
		t.Error("first reading reported a previous index")
	}
	if !preview.Quantities.Consumption.Equal(decimal.NewFromInt(250)) {
		t.Errorf("preview consumption = %s, want 250", preview.Quantities.Consumption)
	}

	if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, 4, decimal.NewFromInt(250)); err != nil {
		t.Fatalf("create: %v", err)
	}
	preview, err = service.PreviewConsumption(ctx, "ionpopescu", 2024, 5, decimal.NewFromInt(310))
	if err != nil {
		t.Fatalf("preview may: %v", err)
	}
	if !preview.HasPrevious || !preview.PreviousIndex.Equal(decimal.NewFromInt(250)) {
		t.Errorf("previous index = %s %v, want 250 true", preview.PreviousIndex, preview.HasPrevious)
	}
	if !preview.Quantities.Consumption.Equal(decimal.NewFromInt(60)) {
		t.Errorf("preview consumption = %s, want 60", preview.Quantities.Consumption)
	}
}

func TestListYearOrdered(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for month, index := range map[int]int64{1: 500, 2: 620, 3: 700} {
		if _, err := service.CreateBillRecord(ctx, "ionpopescu", 2024, month, decimal.NewFromInt(index)); err != nil {
			t.Fatalf("create month %d: %v", month, err)
		}
	}

	records, err := service.ListYear(ctx, "ionpopescu", 2024)
	if err != nil {
		t.Fatalf("list year: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].BillMonth >= records[i].BillMonth {
			t.Fatalf("records not ordered by month: %d before %d", records[i-1].BillMonth, records[i].BillMonth)
		}
	}
}
