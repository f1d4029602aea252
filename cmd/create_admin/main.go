package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"meridianwealth/internal/config"
	"meridianwealth/internal/database"
	"meridianwealth/internal/domain"
	"meridianwealth/internal/util"
)

func main() {
	name := flag.String("name", "System Administrator", "admin display name")
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Println("Usage: create_admin -email admin@example.com -password <password> [-name 'Full Name']")
		os.Exit(1)
	}

	if _, err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	db := database.GetDB()

	var existing domain.User
	if err := db.Where("email = ?", *email).First(&existing).Error; err == nil {
		fmt.Println("A user with that email already exists!")
		return
	}

	hashed, err := util.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	admin := domain.User{
		Name:           *name,
		Email:          *email,
		HashedPassword: hashed,
		IsActive:       true,
		IsAdmin:        true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created: %s <%s>\n", admin.Name, admin.Email)
}
