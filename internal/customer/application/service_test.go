package application

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	billmemory "greenergy-billing/internal/billing/infrastructure/memory"
	customer "greenergy-billing/internal/customer/domain"
	"greenergy-billing/internal/customer/infrastructure/memory"
	"greenergy-billing/internal/refdata"
)

func newTestService(t *testing.T) (*Service, *memory.CustomerRepository) {
	t.Helper()
	repo := memory.NewCustomerRepository()
	localities := refdata.NewLocalityList([][]string{
		{"Cluj-Napoca", "Cluj", "Municipiu", "400001"},
		{"Timisoara", "Timis", "Municipiu", "300001"},
	})
	service, err := NewService(repo, billmemory.NewBillRepository(), localities)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service, repo
}

func TestCreateCustomer(t *testing.T) {
	service, _ := newTestService(t)

	account, err := service.Create(context.Background(), CreateInput{
		Name:   "ion popescu",
		Street: "Str. Horea nr. 5",
		City:   "Cluj-Napoca",
		County: "Cluj",
		Role:   "user",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if account.ID == 0 {
		t.Error("id not assigned")
	}
	if account.Name != "Ion Popescu" {
		t.Errorf("name = %q, want Ion Popescu", account.Name)
	}
	if account.Username != "ionpopescu" {
		t.Errorf("username = %q, want ionpopescu", account.Username)
	}
	if account.Zipcode != "400001" {
		t.Errorf("zipcode = %q, want 400001", account.Zipcode)
	}
	// Default credential is the derived username.
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("ionpopescu")) != nil {
		t.Error("default credential does not verify")
	}
}

func TestCreateCustomerUnknownCounty(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.Create(context.Background(), CreateInput{
		Name: "ion popescu", City: "Cluj-Napoca", County: "Atlantida", Role: "user",
	})
	if !errors.Is(err, customer.ErrUnknownLocality) {
		t.Fatalf("err = %v, want ErrUnknownLocality", err)
	}
}

func TestCreateCustomerDuplicateUsername(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	input := CreateInput{Name: "ion popescu", City: "Cluj-Napoca", County: "Cluj", Role: "user"}
	if _, err := service.Create(ctx, input); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.Create(ctx, input); !errors.Is(err, customer.ErrDuplicateUsername) {
		t.Fatalf("err = %v, want ErrDuplicateUsername", err)
	}
}

func TestCreateCustomerBadRole(t *testing.T) {
	service, _ := newTestService(t)
	_, err := service.Create(context.Background(), CreateInput{
		Name: "ion popescu", City: "Cluj-Napoca", County: "Cluj", Role: "operator",
	})
	if !errors.Is(err, customer.ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
}

func TestUpdateAddress(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	if _, err := service.Create(ctx, CreateInput{Name: "ion popescu", City: "Cluj-Napoca", County: "Cluj", Role: "user"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := service.UpdateAddress(ctx, "ionpopescu", customer.Address{
		Street: "Bd. Take Ionescu nr. 1", City: "Timisoara", County: "Timis",
	})
	if err != nil {
		t.Fatalf("update address: %v", err)
	}
	account, err := service.Get(ctx, "ionpopescu")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if account.City != "Timisoara" || account.Zipcode != "300001" {
		t.Fatalf("address = %q %q, want Timisoara 300001", account.City, account.Zipcode)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	if _, err := service.Create(ctx, CreateInput{Name: "ion popescu", City: "Cluj-Napoca", County: "Cluj", Role: "user"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.Delete(ctx, "ionpopescu", false); !errors.Is(err, customer.ErrNotConfirmed) {
		t.Fatalf("err = %v, want ErrNotConfirmed", err)
	}
	if err := service.Delete(ctx, "ionpopescu", true); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if _, err := service.Get(ctx, "ionpopescu"); !errors.Is(err, customer.ErrNotFound) {
		t.Fatalf("customer still present: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	if _, err := service.Create(ctx, CreateInput{
		Name: "ion popescu", City: "Cluj-Napoca", County: "Cluj", Role: "admin", Password: "parola123",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	account, err := service.Authenticate(ctx, "ionpopescu", "parola123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if account.Role != customer.RoleAdmin {
		t.Errorf("role = %q, want admin", account.Role)
	}
	if _, err := service.Authenticate(ctx, "ionpopescu", "gresita"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := service.Authenticate(ctx, "nimeni", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}
