package orchestrators

import (
	"context"
	"fmt"
	"testing"
)

func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("seed-id-%03d", n)
	}
}

// TestExecuteSeed_FreshDatabase tests seeding into an empty system.
func TestExecuteSeed_FreshDatabase(t *testing.T) {
	accounts := newMockAccountStore()
	types := newMockServiceTypeStore()

	err := ExecuteSeed(context.Background(), SeedInput{
		AdminEmail:    "admin@garage.test",
		AdminPassword: "bootstrap-password",
	}, SeedDeps{
		AccountStore:     accounts,
		ServiceTypeStore: types,
		GenerateID:       seqID(),
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acct, ok := accounts.accounts["admin@garage.test"]
	if !ok {
		t.Fatal("expected admin account to be created")
	}
	if acct.PasswordHash == "" || acct.PasswordHash == "bootstrap-password" {
		t.Error("expected password to be hashed")
	}
	if len(types.types) != len(defaultServiceTypes) {
		t.Errorf("expected %d service types, got %d", len(defaultServiceTypes), len(types.types))
	}
}

// TestExecuteSeed_Idempotent tests that a second run changes nothing.
func TestExecuteSeed_Idempotent(t *testing.T) {
	accounts := newMockAccountStore()
	types := newMockServiceTypeStore()
	input := SeedInput{AdminEmail: "admin@garage.test", AdminPassword: "bootstrap-password"}
	deps := SeedDeps{
		AccountStore:     accounts,
		ServiceTypeStore: types,
		GenerateID:       seqID(),
		Now:              fixedNow,
	}

	if err := ExecuteSeed(context.Background(), input, deps); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	firstHash := accounts.accounts["admin@garage.test"].PasswordHash

	if err := ExecuteSeed(context.Background(), input, deps); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if len(accounts.accounts) != 1 {
		t.Errorf("expected 1 account, got %d", len(accounts.accounts))
	}
	if accounts.accounts["admin@garage.test"].PasswordHash != firstHash {
		t.Error("expected existing admin to be untouched")
	}
	if len(types.types) != len(defaultServiceTypes) {
		t.Errorf("expected %d service types, got %d", len(defaultServiceTypes), len(types.types))
	}
}

// TestExecuteSeed_NoCredentials tests that seeding without credentials skips the admin.
func TestExecuteSeed_NoCredentials(t *testing.T) {
	accounts := newMockAccountStore()
	types := newMockServiceTypeStore()

	err := ExecuteSeed(context.Background(), SeedInput{}, SeedDeps{
		AccountStore:     accounts,
		ServiceTypeStore: types,
		GenerateID:       seqID(),
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts.accounts) != 0 {
		t.Error("expected no account without bootstrap credentials")
	}
	if len(types.types) != len(defaultServiceTypes) {
		t.Error("expected service types to be seeded regardless")
	}
}

// TestExecuteSeed_ExistingAccountSkipsAdmin tests that any existing account disables bootstrap.
func TestExecuteSeed_ExistingAccountSkipsAdmin(t *testing.T) {
	accounts := newMockAccountStore()
	accounts.accounts["existing@garage.test"] = adminAccount(t, "existing@garage.test", "already-here-password")

	err := ExecuteSeed(context.Background(), SeedInput{
		AdminEmail:    "admin@garage.test",
		AdminPassword: "bootstrap-password",
	}, SeedDeps{
		AccountStore:     accounts,
		ServiceTypeStore: newMockServiceTypeStore(),
		GenerateID:       seqID(),
		Now:              fixedNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := accounts.accounts["admin@garage.test"]; ok {
		t.Error("expected bootstrap admin to be skipped when accounts exist")
	}
}
