package main

import (
	"context"
	"flag"
	"log"
	"os"

	"nexuscart/internal/config"
	"nexuscart/internal/db"
	"nexuscart/internal/domain"
	userrepo "nexuscart/internal/repository/user"
)

// grantrole is the out-of-band administrative tool for role assignment:
// signup never produces an admin, and no API endpoint changes roles.
//
//	grantrole -email user@example.com -role admin
func main() {
	email := flag.String("email", "", "account email")
	role := flag.String("role", "admin", "role to assign (user or admin)")
	flag.Parse()

	logger := log.New(os.Stdout, "[grantrole] ", log.LstdFlags|log.LUTC)

	if *email == "" {
		logger.Fatal("usage: grantrole -email <email> [-role user|admin]")
	}
	r := domain.Role(*role)
	if r != domain.RoleUser && r != domain.RoleAdmin {
		logger.Fatalf("unknown role %q", *role)
	}

	cfg := config.FromEnv()
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	repo := userrepo.NewPostgres(pool, logger)
	u, err := repo.SetRole(ctx, *email, r)
	if err != nil {
		logger.Fatalf("set role: %v", err)
	}

	logger.Printf("account %s now has role %s", u.Email, u.Role)
}
