package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"teachshare/internal/config"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	pg "teachshare/internal/infra/db/postgres"
	"teachshare/internal/infra/security"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminEmail := flag.String("admin-email", "admin@teachshare.local", "email for the seeded admin account")
	adminPassword := flag.String("admin-password", "", "password for the seeded admin account (required)")
	flag.Parse()

	if *adminPassword == "" {
		log.Fatal("-admin-password is required")
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	users := pg.NewPostgresUserRepo(pool)
	resources := pg.NewResourceRepo(pool)

	// If the admin already exists, do nothing.
	if existing, err := users.FindByEmail(ctx, repository.NoTX, *adminEmail); err == nil {
		fmt.Printf("admin %s already present (id=%s). No changes.\n", existing.Email, existing.ID)
		return
	}

	hash, err := security.HashPassword(*adminPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin, err := model.NewUser("", "admin", *adminEmail, hash, "")
	if err != nil {
		log.Fatalf("build admin user: %v", err)
	}
	admin.Role = model.RoleAdmin
	admin.Membership = model.Membership{Type: model.MembershipLifetime}
	if err := users.Save(ctx, repository.NoTX, admin); err != nil {
		log.Fatalf("save admin: %v", err)
	}
	fmt.Printf("seeded admin: %s (id=%s)\n", admin.Email, admin.ID)

	// A few sample catalog entries so a fresh install has something to browse.
	seed := []struct {
		Title    string
		Category string
		Access   model.AccessLevel
	}{
		{"Fractions practice sheets", "math", model.AccessFree},
		{"Reading comprehension pack", "literacy", model.AccessFree},
		{"Full-year lesson plan bundle", "planning", model.AccessMember},
	}
	for _, s := range seed {
		res, err := model.NewResource(s.Title, s.Category, s.Access, admin.ID)
		if err != nil {
			log.Fatalf("build resource %q: %v", s.Title, err)
		}
		if err := resources.Save(ctx, repository.NoTX, res); err != nil {
			log.Fatalf("save resource %q: %v", s.Title, err)
		}
		fmt.Printf("seeded resource: %s (id=%s, access=%s)\n", res.Title, res.ID, res.Access)
	}

	fmt.Println("seeding complete")
}
