package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"iptv-reseller-store/internal/config"
	"iptv-reseller-store/internal/domain"
	"iptv-reseller-store/internal/domain/model"
	"iptv-reseller-store/internal/domain/ports/repository"
	"iptv-reseller-store/internal/infra/auth"
	pg "iptv-reseller-store/internal/infra/db/postgres"
	"iptv-reseller-store/internal/migrate"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminPassword := flag.String("admin-password", "", "initial admin password (or ADMIN_PASSWORD env)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := migrate.Up(ctx, cfg.Database.URL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewUserRepo(pool)
	planRepo := pg.NewPlanRepo(pool)
	codeRepo := pg.NewCodeRepo(pool)
	creds := auth.NewCredentialStore(pool)

	// ---- Admin account ----
	pw := *adminPassword
	if pw == "" {
		pw = os.Getenv("ADMIN_PASSWORD")
	}
	if pw == "" {
		log.Fatal("admin password required: pass -admin-password or set ADMIN_PASSWORD")
	}

	principalID, err := creds.CreateAccount(ctx, "Administrator", cfg.Auth.AdminEmail, pw)
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		fmt.Printf("admin account %s already present. No changes.\n", cfg.Auth.AdminEmail)
	case err != nil:
		log.Fatalf("create admin account: %v", err)
	default:
		admin, err := model.NewUser(principalID, "Administrator", cfg.Auth.AdminEmail, model.RoleAdmin)
		if err != nil {
			log.Fatalf("admin profile: %v", err)
		}
		if err := userRepo.Save(ctx, repository.NoTX, admin); err != nil {
			log.Fatalf("save admin profile: %v", err)
		}
		fmt.Printf("seeded admin: %s (id=%s)\n", admin.Email, admin.ID)
	}

	// ---- Sample plans ----
	existing, err := planRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(existing))
		return
	}

	seed := []struct {
		Name     string
		Desc     string
		Price    float64
		Duration string
		Features []string
		Reward   int64
		Codes    []string
	}{
		{"Basic", "Entry tier, one connection", 29.90, "1 month",
			[]string{"1 connection", "SD quality"}, 100,
			[]string{"IPTV-AAAA-1111", "IPTV-AAAA-2222"}},
		{"Premium", "Two connections, HD", 49.90, "3 months",
			[]string{"2 connections", "HD quality", "VOD library"}, 250,
			[]string{"IPTV-BBBB-1111", "IPTV-BBBB-2222", "IPTV-BBBB-3333"}},
		{"Ultimate", "Family tier, full catalog", 89.90, "12 months",
			[]string{"4 connections", "4K quality", "VOD library", "Priority support"}, 600,
			[]string{"IPTV-CCCC-1111"}},
	}

	for _, s := range seed {
		plan, err := model.NewPlan("", s.Name, s.Desc, s.Price, s.Duration, s.Features, s.Reward, true)
		if err != nil {
			log.Fatalf("plan %q: %v", s.Name, err)
		}
		if err := planRepo.Save(ctx, repository.NoTX, plan); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}

		codes := make([]*model.Code, 0, len(s.Codes))
		for _, v := range s.Codes {
			c, err := model.NewCode("", plan.ID, v)
			if err != nil {
				log.Fatalf("code %q: %v", v, err)
			}
			codes = append(codes, c)
		}
		if err := codeRepo.SaveBatch(ctx, repository.NoTX, codes); err != nil {
			log.Fatalf("save codes for %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, price=%.2f, codes=%d)\n", plan.Name, plan.ID, plan.Price, len(codes))
	}

	fmt.Println("Seeding complete.")
}
