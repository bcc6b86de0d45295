// Command seeder creates an admin account directly in the database:
//
//	go run scripts/seeder.go <email> <password> [name]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/tirzah-studio/site-api/config"
	"github.com/tirzah-studio/site-api/domain/auth"
	"github.com/tirzah-studio/site-api/pkg/logger"
	"github.com/tirzah-studio/site-api/utils"
)

const defaultName = "Admin User"

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/seeder.go <email> <password> [name]")
		os.Exit(1)
	}
	email := strings.TrimSpace(os.Args[1])
	password := os.Args[2]
	name := defaultName
	if len(os.Args) > 3 && strings.TrimSpace(os.Args[3]) != "" {
		name = strings.TrimSpace(os.Args[3])
	}

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Level: logger.LevelInfo, Environment: cfg.AppEnv})
	log := logger.Get().WithComponent("seeder")

	if len(password) < auth.MinPasswordLength {
		log.Fatal("Password too short", fmt.Errorf("need at least %d characters", auth.MinPasswordLength))
	}

	ctx := context.Background()
	db, err := config.OpenDB(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to apply migrations", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatal("Failed to hash password", err)
	}

	admin := &auth.Admin{ID: uuid.NewString(), Email: email, Password: hash, Name: name}
	err = auth.NewStore(db).CreateAdmin(ctx, admin)
	if errors.Is(err, auth.ErrAdminExists) {
		log.Fatal("Admin with this email already exists", err, logger.Email(email))
	}
	if err != nil {
		log.Fatal("Failed to create admin", err, logger.Email(email))
	}

	log.Info("Admin created",
		logger.AdminID(admin.ID),
		logger.Email(admin.Email),
		logger.String("name", admin.Name),
		logger.String("login_url", cfg.FrontendURL+"/admin/login"),
	)
}
