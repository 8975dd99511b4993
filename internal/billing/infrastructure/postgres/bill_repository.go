package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	billing "greenergy-billing/internal/billing/domain"
)

const billColumns = `
	user_id, username, bill_year, bill_month,
	bill_serial, bill_number, bill_generated_date, bill_due_date,
	bill_start_date, bill_end_date, index_value,
	energ_cons_cant, energ_cons_pret, energ_cons_val, energ_cons_tva,
	acciza_cant, acciza_pret, acciza_val, acciza_tva,
	certif_cant, certif_pret, certif_val, certif_tva,
	oug_cant, oug_pret, oug_val, oug_tva,
	total_fara_tva, total_tva, total_bill_value,
	created_at, updated_at`

// BillRepository persists the bill ledger in the bills table.
// Every write runs in its own transaction with an explicit commit.
type BillRepository struct {
	db *sql.DB
}

// NewBillRepository constructs a repository.
func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

// Get loads one ledger entry by its (customer, year, month) key.
func (r *BillRepository) Get(ctx context.Context, username string, year, month int) (*billing.BillRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("bill repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+billColumns+`
FROM bills
WHERE username = $1 AND bill_year = $2 AND bill_month = $3
LIMIT 1`, username, year, month)
	record, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, billing.ErrRecordNotFound
		}
		return nil, fmt.Errorf("bill repo: get: %w", err)
	}
	return record, nil
}

// PreviousIndex returns the index value of the chronologically preceding
// bill month. found is false when no such record exists, which is the
// normal state for a customer's first reading.
func (r *BillRepository) PreviousIndex(ctx context.Context, username string, year, month int) (decimal.Decimal, bool, error) {
	if r == nil || r.db == nil {
		return decimal.Decimal{}, false, errors.New("bill repo: nil db")
	}
	prevYear, prevMonth := billing.PreviousBillMonth(year, month)
	var index decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
SELECT index_value
FROM bills
WHERE username = $1 AND bill_year = $2 AND bill_month = $3
LIMIT 1`, username, prevYear, prevMonth).Scan(&index)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Decimal{}, false, nil
		}
		return decimal.Decimal{}, false, fmt.Errorf("bill repo: previous index: %w", err)
	}
	return index, true, nil
}

// LatestPeriod returns the key of the customer's most recent record.
func (r *BillRepository) LatestPeriod(ctx context.Context, username string) (int, int, bool, error) {
	if r == nil || r.db == nil {
		return 0, 0, false, errors.New("bill repo: nil db")
	}
	var year, month int
	err := r.db.QueryRowContext(ctx, `
SELECT bill_year, bill_month
FROM bills
WHERE username = $1
ORDER BY bill_year DESC, bill_month DESC
LIMIT 1`, username).Scan(&year, &month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("bill repo: latest period: %w", err)
	}
	return year, month, true, nil
}

// Insert stores a new ledger entry.
func (r *BillRepository) Insert(ctx context.Context, record *billing.BillRecord) error {
	if r == nil || r.db == nil {
		return errors.New("bill repo: nil db")
	}
	if record == nil {
		return billing.ErrNilRecord
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bill repo: begin: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO bills (`+billColumns+`
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
	$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32
)`, billArgs(record)...)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("bill repo: insert: %w", err)
	}
	return tx.Commit()
}

// Update overwrites the derived fields of an existing ledger entry.
func (r *BillRepository) Update(ctx context.Context, record *billing.BillRecord) error {
	if r == nil || r.db == nil {
		return errors.New("bill repo: nil db")
	}
	if record == nil {
		return billing.ErrNilRecord
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bill repo: begin: %w", err)
	}
	result, err := tx.ExecContext(ctx, `
UPDATE bills SET
	index_value = $4,
	energ_cons_cant = $5, energ_cons_pret = $6, energ_cons_val = $7, energ_cons_tva = $8,
	acciza_cant = $9, acciza_pret = $10, acciza_val = $11, acciza_tva = $12,
	certif_cant = $13, certif_pret = $14, certif_val = $15, certif_tva = $16,
	oug_cant = $17, oug_pret = $18, oug_val = $19, oug_tva = $20,
	total_fara_tva = $21, total_tva = $22, total_bill_value = $23,
	updated_at = $24
WHERE username = $1 AND bill_year = $2 AND bill_month = $3`,
		record.Username, record.BillYear, record.BillMonth,
		record.IndexValue,
		record.EnergyQty, record.EnergyPrice, record.EnergyValue, record.EnergyVAT,
		record.ExciseQty, record.ExcisePrice, record.ExciseValue, record.ExciseVAT,
		record.CertificateQty, record.CertificatePrice, record.CertificateValue, record.CertificateVAT,
		record.RebateQty, record.RebatePrice, record.RebateValue, record.RebateVAT,
		record.TotalPreVAT, record.TotalVAT, record.GrandTotal,
		record.UpdatedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("bill repo: update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("bill repo: update: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return billing.ErrRecordNotFound
	}
	return tx.Commit()
}

// ListYear returns a customer's records for a year ordered by month.
func (r *BillRepository) ListYear(ctx context.Context, username string, year int) ([]*billing.BillRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("bill repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+billColumns+`
FROM bills
WHERE username = $1 AND bill_year = $2
ORDER BY bill_month ASC`, username, year)
	if err != nil {
		return nil, fmt.Errorf("bill repo: list year: %w", err)
	}
	defer rows.Close()

	var records []*billing.BillRecord
	for rows.Next() {
		record, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("bill repo: list year: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteForCustomer removes all ledger entries for a customer.
func (r *BillRepository) DeleteForCustomer(ctx context.Context, username string) error {
	if r == nil || r.db == nil {
		return errors.New("bill repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("bill repo: delete for customer: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*billing.BillRecord, error) {
	var record billing.BillRecord
	err := row.Scan(
		&record.CustomerID, &record.Username, &record.BillYear, &record.BillMonth,
		&record.Serial, &record.Number, &record.Generated, &record.Due,
		&record.Start, &record.End, &record.IndexValue,
		&record.EnergyQty, &record.EnergyPrice, &record.EnergyValue, &record.EnergyVAT,
		&record.ExciseQty, &record.ExcisePrice, &record.ExciseValue, &record.ExciseVAT,
		&record.CertificateQty, &record.CertificatePrice, &record.CertificateValue, &record.CertificateVAT,
		&record.RebateQty, &record.RebatePrice, &record.RebateValue, &record.RebateVAT,
		&record.TotalPreVAT, &record.TotalVAT, &record.GrandTotal,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func billArgs(record *billing.BillRecord) []any {
	return []any{
		record.CustomerID, record.Username, record.BillYear, record.BillMonth,
		record.Serial, record.Number, record.Generated, record.Due,
		record.Start, record.End, record.IndexValue,
		record.EnergyQty, record.EnergyPrice, record.EnergyValue, record.EnergyVAT,
		record.ExciseQty, record.ExcisePrice, record.ExciseValue, record.ExciseVAT,
		record.CertificateQty, record.CertificatePrice, record.CertificateValue, record.CertificateVAT,
		record.RebateQty, record.RebatePrice, record.RebateValue, record.RebateVAT,
		record.TotalPreVAT, record.TotalVAT, record.GrandTotal,
		record.CreatedAt, record.UpdatedAt,
	}
}
