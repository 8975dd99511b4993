package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository persists the append-only bill ledger. One write transaction per
// Insert or Update; reads never mutate the ledger.
type Repository interface {
	Get(ctx context.Context, username string, year, month int) (*BillRecord, error)
	// PreviousIndex returns the index value of the chronologically preceding
	// bill month. found is false for a customer's first-ever reading.
	PreviousIndex(ctx context.Context, username string, year, month int) (index decimal.Decimal, found bool, err error)
	// LatestPeriod returns the (year, month) key of the customer's most
	// recent bill record. found is false when the ledger holds none.
	LatestPeriod(ctx context.Context, username string) (year int, month int, found bool, err error)
	Insert(ctx context.Context, record *BillRecord) error
	Update(ctx context.Context, record *BillRecord) error
	// ListYear returns a customer's records for a year ordered by month.
	ListYear(ctx context.Context, username string, year int) ([]*BillRecord, error)
	// DeleteForCustomer removes all ledger entries for a customer.
	DeleteForCustomer(ctx context.Context, username string) error
}
