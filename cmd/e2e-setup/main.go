package main

import (
	"context"
	"flag"
	"log"
	"time"

	"teachshare/internal/config"
	"teachshare/internal/domain/model"
	"teachshare/internal/domain/ports/repository"
	pg "teachshare/internal/infra/db/postgres"
	red "teachshare/internal/infra/redis"
	"teachshare/internal/infra/security"
)

// Resets the database and cache to a clean, predictable state for manual
// end-to-end testing. Never point this at a production database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	log.Println("[0/3] Applying schema...")
	if err := pg.ApplySchema(ctx, pool); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	// 1. Wipe the rate-limit counters.
	if cfg.Redis.URL != "" {
		log.Println("[1/3] Wiping redis...")
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		if err := redisClient.FlushDB(ctx); err != nil {
			log.Fatalf("failed to flush redis: %v", err)
		}
		_ = redisClient.Close()
	} else {
		log.Println("[1/3] Skipping redis (no url configured)")
	}

	// 2. Wipe the database.
	log.Println("[2/3] Wiping all existing database data...")
	_, err = pool.Exec(ctx, `
		TRUNCATE
			users, user_activation_log, activation_codes, resources
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	// 3. Seed a known admin and a starter batch of codes.
	log.Println("[3/3] Seeding admin account and activation codes...")
	users := pg.NewPostgresUserRepo(pool)
	codes := pg.NewActivationCodeRepo(pool)

	hash, err := security.HashPassword("e2e-password")
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin, err := model.NewUser("", "e2e-admin", "e2e-admin@teachshare.local", hash, "")
	if err != nil {
		log.Fatalf("build admin: %v", err)
	}
	admin.Role = model.RoleAdmin
	if err := users.Save(ctx, repository.NoTX, admin); err != nil {
		log.Fatalf("save admin: %v", err)
	}

	now := time.Now()
	for i := 0; i < 5; i++ {
		ac, err := model.NewActivationCode(model.MembershipMonthly, 30, "e2e", "e2e fixture", admin.ID, now)
		if err != nil {
			log.Fatalf("build code: %v", err)
		}
		if err := codes.Save(ctx, repository.NoTX, ac); err != nil {
			log.Fatalf("save code: %v", err)
		}
		log.Printf("  code: %s", ac.Code)
	}

	log.Println("--- E2E Environment Setup Complete ---")
	log.Printf("admin login: e2e-admin@teachshare.local / e2e-password")
}
