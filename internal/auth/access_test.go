package auth

import (
	"context"
	"errors"
	"testing"
)

func TestEnsureSelfOrAdmin(t *testing.T) {
	adminCtx := WithIdentity(context.Background(), RoleAdmin, "admin")
	if err := EnsureSelfOrAdmin(adminCtx, "ionpopescu"); err != nil {
		t.Fatalf("admin access: %v", err)
	}

	selfCtx := WithIdentity(context.Background(), RoleUser, "ionpopescu")
	if err := EnsureSelfOrAdmin(selfCtx, "ionpopescu"); err != nil {
		t.Fatalf("self access: %v", err)
	}

	otherCtx := WithIdentity(context.Background(), RoleUser, "altcineva")
	if err := EnsureSelfOrAdmin(otherCtx, "ionpopescu"); !errors.Is(err, ErrAccountMismatch) {
		t.Fatalf("err = %v, want ErrAccountMismatch", err)
	}
}
