package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"garage/internal/domain/account"
	"garage/internal/domain/servicetype"
)

// AccountStoreForSeed defines the store interface needed by seeding.
type AccountStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, a account.Account) error
}

// defaultServiceTypes are created on first boot so the intake form has a
// taxonomy to offer before the admin customizes it.
var defaultServiceTypes = []servicetype.ServiceType{
	{Name: "Oil Change", Description: "Engine oil and filter replacement"},
	{Name: "Brake Service", Description: "Brake pad and disc inspection and replacement"},
	{Name: "Tire Rotation", Description: "Tire rotation and pressure check"},
	{Name: "Engine Inspection", Description: "Full engine diagnostic and inspection"},
}

// SeedInput carries the bootstrap admin credentials.
type SeedInput struct {
	AdminEmail    string
	AdminPassword string
}

// SeedDeps holds dependencies for Seed.
type SeedDeps struct {
	AccountStore     AccountStoreForSeed
	ServiceTypeStore ServiceTypeStoreForOrchestrator
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteSeed creates the default admin account and service types. Safe to
// run on every boot: existing rows are left untouched.
// PRE: stores are reachable
// POST: At least one admin account and the default taxonomy exist
func ExecuteSeed(ctx context.Context, input SeedInput, deps SeedDeps) error {
	if err := seedAdmin(ctx, input, deps); err != nil {
		return err
	}
	return seedServiceTypes(ctx, deps)
}

func seedAdmin(ctx context.Context, input SeedInput, deps SeedDeps) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if input.AdminEmail == "" || input.AdminPassword == "" {
		slog.Warn("seed_admin_skipped", "reason", "no bootstrap credentials configured")
		return nil
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.AdminEmail,
		Role:      account.RoleAdmin,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(input.AdminPassword); err != nil {
		return err
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}

	slog.Info("seed_event", "event", "admin_created", "email", acct.Email)
	return nil
}

func seedServiceTypes(ctx context.Context, deps SeedDeps) error {
	created := 0
	for _, st := range defaultServiceTypes {
		_, err := deps.ServiceTypeStore.GetByName(ctx, st.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, servicetype.ErrNotFound) {
			return err
		}

		st.ID = deps.GenerateID()
		if err := deps.ServiceTypeStore.Save(ctx, st); err != nil {
			return err
		}
		created++
	}

	if created > 0 {
		slog.Info("seed_event", "event", "service_types_created", "count", created)
	}
	return nil
}
