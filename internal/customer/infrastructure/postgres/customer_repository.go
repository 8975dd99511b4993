package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	customer "greenergy-billing/internal/customer/domain"
)

// CustomerRepository persists customer accounts in the users table.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository constructs a repository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetByUsername loads a customer account.
func (r *CustomerRepository) GetByUsername(ctx context.Context, username string) (*customer.Customer, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("customer repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, street, zipcode, city, county, username, password, role
FROM users
WHERE username = $1
LIMIT 1`, username)

	var c customer.Customer
	var role string
	err := row.Scan(&c.ID, &c.Name, &c.Street, &c.Zipcode, &c.City, &c.County, &c.Username, &c.PasswordHash, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("customer repo: get: %w", err)
	}
	normalized, ok := customer.NormalizeRole(role)
	if !ok {
		return nil, customer.ErrInvalidRole
	}
	c.Role = normalized
	return &c, nil
}

// Insert stores a new customer and returns the assigned id.
func (r *CustomerRepository) Insert(ctx context.Context, c *customer.Customer) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("customer repo: nil db")
	}
	if c == nil {
		return 0, errors.New("customer repo: nil customer")
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
INSERT INTO users (name, street, zipcode, city, county, username, password, role)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id`,
		c.Name, c.Street, c.Zipcode, c.City, c.County, c.Username, c.PasswordHash, string(c.Role),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, customer.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("customer repo: insert: %w", err)
	}
	return id, nil
}

// UpdateAddress overwrites the postal address of an account.
func (r *CustomerRepository) UpdateAddress(ctx context.Context, username string, addr customer.Address) error {
	if r == nil || r.db == nil {
		return errors.New("customer repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE users SET street = $2, zipcode = $3, city = $4, county = $5
WHERE username = $1`, username, addr.Street, addr.Zipcode, addr.City, addr.County)
	if err != nil {
		return fmt.Errorf("customer repo: update address: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("customer repo: update address: %w", err)
	}
	if affected == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// Delete removes a customer account.
func (r *CustomerRepository) Delete(ctx context.Context, username string) error {
	if r == nil || r.db == nil {
		return errors.New("customer repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("customer repo: delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("customer repo: delete: %w", err)
	}
	if affected == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// isUniqueViolation matches postgres unique constraint errors (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
