package customer

import (
	"context"
	"errors"
	"strings"
)

// Role of an account on the platform.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(strings.ToLower(value)) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

var (
	// ErrNotFound is returned when no customer matches the username.
	ErrNotFound = errors.New("customer: not found")
	// ErrDuplicateUsername is returned when the derived username is taken.
	ErrDuplicateUsername = errors.New("customer: username already exists")
	// ErrInvalidName is returned when the display name has fewer than
	// a first and a last name.
	ErrInvalidName = errors.New("customer: name needs first and last name")
	// ErrInvalidRole is returned for roles outside user/admin.
	ErrInvalidRole = errors.New("customer: invalid role")
	// ErrUnknownLocality is returned when county or locality is not in the
	// reference list.
	ErrUnknownLocality = errors.New("customer: unknown locality")
	// ErrNotConfirmed is returned when deletion is attempted without the
	// explicit operator confirmation.
	ErrNotConfirmed = errors.New("customer: deletion not confirmed")
)

// Customer is an account holding a metering point.
type Customer struct {
	ID           int64
	Name         string
	Street       string
	Zipcode      string
	City         string
	County       string
	Username     string
	PasswordHash string
	Role         Role
}

// Address is the mutable part of a customer record.
type Address struct {
	Street  string
	Zipcode string
	City    string
	County  string
}

// FormatName normalizes a display name: trimmed, each part capitalized.
// The name must contain at least a first and a last name.
func FormatName(raw string) (string, error) {
	parts := strings.Fields(raw)
	if len(parts) < 2 {
		return "", ErrInvalidName
	}
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
	}
	return strings.Join(parts, " "), nil
}

// DeriveUsername builds the login username deterministically from the
// display name: lowercased parts concatenated without separators.
func DeriveUsername(name string) string {
	parts := strings.Fields(name)
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, "")
}

// Repository persists customer accounts.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Customer, error)
	Insert(ctx context.Context, c *Customer) (int64, error)
	UpdateAddress(ctx context.Context, username string, addr Address) error
	Delete(ctx context.Context, username string) error
}
