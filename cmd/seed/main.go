// Command seed creates the admin account and loads a sample catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"phonestore/models"
	"phonestore/repository"
	"phonestore/utils"
)

const adminEmail = "admin@phonestore.com"

func main() {
	reset := flag.Bool("reset", false, "delete every phone before seeding")
	extra := flag.Int("extra", 55, "number of generated phones added to the featured ones")
	seed := flag.Uint64("seed", 42, "random seed for generated phones")
	adminOnly := flag.Bool("admin-only", false, "only create the admin account")
	flag.Parse()

	if err := run(*reset, *adminOnly, *extra, *seed); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(reset, adminOnly bool, extra int, seed uint64) error {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	if err := ensureAdmin(ctx, repository.NewUserRepository(db), password); err != nil {
		return err
	}
	if adminOnly {
		return nil
	}

	phones := repository.NewPhoneRepository(db)
	if reset {
		n, err := phones.DeleteAll(ctx)
		if err != nil {
			return err
		}
		slog.Info("cleared existing phones", "count", n)
	}
	return seedPhones(ctx, phones, extra, seed)
}

// ensureAdmin creates the admin account, or promotes an existing account
// with the admin email.
func ensureAdmin(ctx context.Context, users repository.UserRepository, password string) error {
	existing, err := users.FindByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			slog.Info("admin user already exists", "email", adminEmail)
			return nil
		}
		existing.Role = models.RoleAdmin
		if err := users.Replace(ctx, existing); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		slog.Info("updated existing user to admin role", "email", adminEmail)
		return nil
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("find admin: %w", err)
	}

	if err := models.ValidatePassword(password); err != nil {
		return err
	}
	digest, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:     adminEmail,
		Password:  digest,
		FirstName: "Admin",
		LastName:  "User",
		Role:      models.RoleAdmin,
		IsActive:  true,
		Addresses: []models.Address{},
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	slog.Info("admin user created", "email", adminEmail)
	return nil
}

// seedPhones inserts the catalog, skipping SKUs that already exist.
func seedPhones(ctx context.Context, phones repository.PhoneRepository, extra int, seed uint64) error {
	all, err := catalog(extra, seed)
	if err != nil {
		return err
	}

	var created, skipped int
	for i := range all {
		p := &all[i]
		p.Normalize()
		if err := p.Validate(); err != nil {
			return fmt.Errorf("phone %s: %w", p.SKU, err)
		}
		if err := phones.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				skipped++
				continue
			}
			return err
		}
		created++
	}
	slog.Info("seeded phones", "created", created, "skipped", skipped)
	return nil
}
