package memory

import (
	"context"
	"sync"

	customer "greenergy-billing/internal/customer/domain"
)

// CustomerRepository is an in-memory account store, used by tests.
type CustomerRepository struct {
	mu     sync.RWMutex
	nextID int64
	data   map[string]*customer.Customer
}

// NewCustomerRepository constructs a repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{nextID: 1, data: make(map[string]*customer.Customer)}
}

// GetByUsername loads a customer account.
func (r *CustomerRepository) GetByUsername(ctx context.Context, username string) (*customer.Customer, error) {
	_ = ctx
	r.mu.RLock()
	account := r.data[username]
	r.mu.RUnlock()
	if account == nil {
		return nil, customer.ErrNotFound
	}
	copy := *account
	return &copy, nil
}

// Insert stores a new account and returns the assigned id.
func (r *CustomerRepository) Insert(ctx context.Context, c *customer.Customer) (int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[c.Username]; exists {
		return 0, customer.ErrDuplicateUsername
	}
	id := r.nextID
	r.nextID++
	copy := *c
	copy.ID = id
	r.data[c.Username] = &copy
	return id, nil
}

// UpdateAddress overwrites the postal address of an account.
func (r *CustomerRepository) UpdateAddress(ctx context.Context, username string, addr customer.Address) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.data[username]
	if !ok {
		return customer.ErrNotFound
	}
	account.Street = addr.Street
	account.Zipcode = addr.Zipcode
	account.City = addr.City
	account.County = addr.County
	return nil
}

// Delete removes an account.
func (r *CustomerRepository) Delete(ctx context.Context, username string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[username]; !ok {
		return customer.ErrNotFound
	}
	delete(r.data, username)
	return nil
}
