package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gia-feedback/feedback-api/internal/config"
	"github.com/gia-feedback/feedback-api/internal/database"
	"github.com/gia-feedback/feedback-api/internal/models"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// create-admin provisions an admin account from the command line, for
// bootstrapping a deployment without the seeded defaults.
func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password")
	displayName := flag.String("display-name", "Administrator", "display name")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin -username <name> -password <pass> [-display-name <name>]")
		os.Exit(2)
	}
	if len(*password) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var existing models.User
	if err := db.Where("username = ?", *username).First(&existing).Error; err == nil {
		log.Fatalf("User %q already exists", *username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := models.User{
		Username:     *username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Created admin user %q (id=%d)\n", admin.Username, admin.ID)
}
