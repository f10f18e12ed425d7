package seeders

import (
	"log"

	"gorm.io/gorm"

	"github.com/Piyush5784/maa-anapurna-trust-api/model"
)

// MainSeeder coordinates all seeding operations.
type MainSeeder struct {
	db *gorm.DB
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll migrates the schema and runs all seeders.
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.db.AutoMigrate(
		&model.User{},
		&model.Story{},
		&model.Contact{},
		&model.PageVisit{},
		&model.PageStats{},
		&model.AppLog{},
	); err != nil {
		return err
	}

	adminSeeder := NewAdminSeeder(s.db)
	if err := adminSeeder.SeedAdmin(); err != nil {
		log.Printf("Admin seeding failed: %v", err)
		return err
	}

	storySeeder := NewStorySeeder(s.db)
	if err := storySeeder.SeedStories(); err != nil {
		log.Printf("Story seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func (s *MainSeeder) SeedAdminOnly() error {
	return NewAdminSeeder(s.db).SeedAdmin()
}

func (s *MainSeeder) SeedStoriesOnly() error {
	return NewStorySeeder(s.db).SeedStories()
}
