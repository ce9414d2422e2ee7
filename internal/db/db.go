package db

import (
	"log"

	"blogify/internal/models"
	"blogify/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init opens the Postgres connection, migrates the schema and seeds the
// default categories. The returned handle is passed into every handler
// constructor; there is no package-global connection.
func Init(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(database); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	seedCategories(database)

	return database, nil
}

// Migrate runs the schema migration. Split out from Init so tests can run it
// against their own database.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
	)
}

func seedCategories(database *gorm.DB) {
	var count int64
	database.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	names := []string{"technology", "lifestyle", "travel", "food"}
	for _, name := range names {
		category := models.Category{Name: name, Slug: utils.MakeSlug(name)}
		if err := database.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", name, err)
		}
	}
	log.Println("Initial categories created successfully")
}
