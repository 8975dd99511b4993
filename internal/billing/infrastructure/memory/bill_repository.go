package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	billing "greenergy-billing/internal/billing/domain"
)

// BillRepository is an in-memory bill ledger, used by tests.
type BillRepository struct {
	mu   sync.RWMutex
	data map[string]*billing.BillRecord
}

// NewBillRepository constructs a repository.
func NewBillRepository() *BillRepository {
	return &BillRepository{data: make(map[string]*billing.BillRecord)}
}

func key(username string, year, month int) string {
	return fmt.Sprintf("%s|%04d-%02d", username, year, month)
}

// Get loads one ledger entry.
func (r *BillRepository) Get(ctx context.Context, username string, year, month int) (*billing.BillRecord, error) {
	_ = ctx
	r.mu.RLock()
	record := r.data[key(username, year, month)]
	r.mu.RUnlock()
	if record == nil {
		return nil, billing.ErrRecordNotFound
	}
	return record.Clone(), nil
}

// PreviousIndex returns the preceding month's index value.
func (r *BillRepository) PreviousIndex(ctx context.Context, username string, year, month int) (decimal.Decimal, bool, error) {
	_ = ctx
	prevYear, prevMonth := billing.PreviousBillMonth(year, month)
	r.mu.RLock()
	record := r.data[key(username, prevYear, prevMonth)]
	r.mu.RUnlock()
	if record == nil {
		return decimal.Decimal{}, false, nil
	}
	return record.IndexValue, true, nil
}

// LatestPeriod returns the key of the customer's most recent record.
func (r *BillRepository) LatestPeriod(ctx context.Context, username string) (int, int, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var year, month int
	var found bool
	for _, record := range r.data {
		if record.Username != username {
			continue
		}
		if !found || record.BillYear > year || (record.BillYear == year && record.BillMonth > month) {
			year, month, found = record.BillYear, record.BillMonth, true
		}
	}
	return year, month, found, nil
}

// Insert stores a new ledger entry.
func (r *BillRepository) Insert(ctx context.Context, record *billing.BillRecord) error {
	_ = ctx
	if record == nil {
		return billing.ErrNilRecord
	}
	k := key(record.Username, record.BillYear, record.BillMonth)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[k]; exists {
		return billing.ErrDuplicateRecord
	}
	r.data[k] = record.Clone()
	return nil
}

// Update overwrites an existing ledger entry.
func (r *BillRepository) Update(ctx context.Context, record *billing.BillRecord) error {
	_ = ctx
	if record == nil {
		return billing.ErrNilRecord
	}
	k := key(record.Username, record.BillYear, record.BillMonth)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[k]; !exists {
		return billing.ErrRecordNotFound
	}
	r.data[k] = record.Clone()
	return nil
}

// ListYear returns a customer's records for a year ordered by month.
func (r *BillRepository) ListYear(ctx context.Context, username string, year int) ([]*billing.BillRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var records []*billing.BillRecord
	for _, record := range r.data {
		if record.Username == username && record.BillYear == year {
			records = append(records, record.Clone())
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].BillMonth < records[j].BillMonth })
	return records, nil
}

// DeleteForCustomer removes all entries for a customer.
func (r *BillRepository) DeleteForCustomer(ctx context.Context, username string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, record := range r.data {
		if record.Username == username {
			delete(r.data, k)
		}
	}
	return nil
}
