package application

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	billing "greenergy-billing/internal/billing/domain"
	customer "greenergy-billing/internal/customer/domain"
	"greenergy-billing/internal/observability/metrics"
	"greenergy-billing/internal/refdata"
)

// ErrInvalidCredentials is returned on a failed login.
var ErrInvalidCredentials = errors.New("customer: invalid credentials")

// CreateInput is the admin-provided data for a new customer.
type CreateInput struct {
	Name   string
	Street string
	City   string
	County string
	Role   string
	// Password is optional; when empty the derived username is used as the
	// initial credential, which the customer is expected to change.
	Password string
}

// Service handles customer lifecycle: create, address change, deletion and
// credential checks. All address data is validated against the locality
// reference list before any write.
type Service struct {
	repo       customer.Repository
	ledger     billing.Repository
	localities *refdata.LocalityList
}

// NewService constructs the service.
func NewService(repo customer.Repository, ledger billing.Repository, localities *refdata.LocalityList) (*Service, error) {
	if repo == nil {
		return nil, errors.New("customer service: nil repository")
	}
	if ledger == nil {
		return nil, errors.New("customer service: nil ledger repository")
	}
	if localities == nil {
		return nil, errors.New("customer service: nil locality list")
	}
	return &Service{repo: repo, ledger: ledger, localities: localities}, nil
}

// Create registers a new customer. The username is derived from the display
// name; the zip code is resolved from the locality list.
func (s *Service) Create(ctx context.Context, input CreateInput) (*customer.Customer, error) {
	name, err := customer.FormatName(input.Name)
	if err != nil {
		return nil, err
	}
	role, ok := customer.NormalizeRole(input.Role)
	if !ok {
		return nil, customer.ErrInvalidRole
	}
	if !s.localities.Exists(input.County) {
		return nil, fmt.Errorf("%w: county %q", customer.ErrUnknownLocality, input.County)
	}
	if !s.localities.Exists(input.City) {
		return nil, fmt.Errorf("%w: city %q", customer.ErrUnknownLocality, input.City)
	}
	zipcode, err := s.localities.Zipcode(input.City)
	if err != nil {
		return nil, fmt.Errorf("customer service: %w", err)
	}

	username := customer.DeriveUsername(name)
	if existing, err := s.repo.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %q", customer.ErrDuplicateUsername, username)
	} else if err != nil && !errors.Is(err, customer.ErrNotFound) {
		return nil, err
	}

	password := input.Password
	if password == "" {
		password = username
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("customer service: hash credential: %w", err)
	}

	account := &customer.Customer{
		Name:         name,
		Street:       input.Street,
		Zipcode:      zipcode,
		City:         input.City,
		County:       input.County,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	id, err := s.repo.Insert(ctx, account)
	if err != nil {
		return nil, err
	}
	account.ID = id
	metrics.IncCustomerEvent("created")
	return account, nil
}

// UpdateAddress replaces a customer's postal address. County and city must
// exist in the locality list; an empty zip code is resolved from it.
func (s *Service) UpdateAddress(ctx context.Context, username string, addr customer.Address) error {
	if !s.localities.Exists(addr.County) {
		return fmt.Errorf("%w: county %q", customer.ErrUnknownLocality, addr.County)
	}
	if !s.localities.Exists(addr.City) {
		return fmt.Errorf("%w: city %q", customer.ErrUnknownLocality, addr.City)
	}
	if addr.Zipcode == "" {
		zipcode, err := s.localities.Zipcode(addr.City)
		if err != nil {
			return fmt.Errorf("customer service: %w", err)
		}
		addr.Zipcode = zipcode
	}
	if err := s.repo.UpdateAddress(ctx, username, addr); err != nil {
		return err
	}
	metrics.IncCustomerEvent("address_updated")
	return nil
}

// Delete removes a customer and the customer's ledger entries. Deletion is
// immediate and non-reversible, so it requires the explicit confirmation
// flag gathered from the operator.
func (s *Service) Delete(ctx context.Context, username string, confirmed bool) error {
	if !confirmed {
		return customer.ErrNotConfirmed
	}
	if _, err := s.repo.GetByUsername(ctx, username); err != nil {
		return err
	}
	if err := s.ledger.DeleteForCustomer(ctx, username); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, username); err != nil {
		return err
	}
	metrics.IncCustomerEvent("deleted")
	return nil
}

// Get loads a customer account.
func (s *Service) Get(ctx context.Context, username string) (*customer.Customer, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*customer.Customer, error) {
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
