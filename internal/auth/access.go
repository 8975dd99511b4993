package auth

import (
	"context"
	"errors"
)

// ErrAccountMismatch indicates the resource belongs to a different account.
var ErrAccountMismatch = errors.New("auth: account mismatch")

// EnsureSelfOrAdmin verifies the request identity may access the given
// account's data: admins may access any account, users only their own.
func EnsureSelfOrAdmin(ctx context.Context, username string) error {
	if RoleFromContext(ctx) == RoleAdmin {
		return nil
	}
	if subject := SubjectFromContext(ctx); subject != "" && subject == username {
		return nil
	}
	return ErrAccountMismatch
}
