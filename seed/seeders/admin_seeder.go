package seeders

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Piyush5784/maa-anapurna-trust-api/model"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// AdminSeeder creates the initial admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Skips silently when an admin already exists.
type AdminSeeder struct {
	db *gorm.DB
}

func NewAdminSeeder(db *gorm.DB) *AdminSeeder {
	return &AdminSeeder{db: db}
}

func (s *AdminSeeder) SeedAdmin() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	var existing model.User
	if err := s.db.Where("role = ?", shared.RoleAdmin).First(&existing).Error; err == nil {
		log.Println("Admin user already exists, skipping admin seeding")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      "Administrator",
		Provider:  "seed",
		Role:      shared.RoleAdmin,
		Password:  string(hashed),
		LastLogin: time.Now(),
	}

	if err := s.db.Create(&admin).Error; err != nil {
		log.Printf("Error creating admin user: %v", err)
		return err
	}

	log.Printf("Created admin user: %s", admin.Email)
	return nil
}
