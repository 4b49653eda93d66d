package database

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/weddingwrangle/weddingwrangle/models"
)

var DB *gorm.DB

// Connect establishes a connection to the database
func Connect() {
	var err error

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}

	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("DB_PASS")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "weddingwrangle"
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, user, password, dbname, port)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	log.Info().Str("host", host).Str("database", dbname).Msg("database connection established")
}

// Migrate automatically migrates the database schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Title{},
		&models.Position{},
		&models.Dietary{},
		&models.Starter{},
		&models.Main{},
		&models.Audience{},
		&models.Email{},
		&models.Guest{},
	)
}

// Seed creates the reference rows a fresh installation needs: the three
// classifier-managed audiences plus a starter set of titles and positions.
func Seed(db *gorm.DB) error {
	for _, name := range models.ManagedAudienceNames() {
		audience := models.Audience{Name: name, Managed: true}
		if err := db.Where(models.Audience{Name: name}).
			Assign(models.Audience{Managed: true}).
			FirstOrCreate(&audience).Error; err != nil {
			return fmt.Errorf("seeding audience %q: %w", name, err)
		}
	}

	for _, name := range []string{"Mr", "Mrs", "Ms", "Miss", "Mx", "Dr"} {
		if err := db.Where(models.Title{Name: name}).
			FirstOrCreate(&models.Title{Name: name}).Error; err != nil {
			return fmt.Errorf("seeding title %q: %w", name, err)
		}
	}

	for _, name := range []string{models.PositionGuest, "Bride", "Groom", "Staff"} {
		if err := db.Where(models.Position{Name: name}).
			FirstOrCreate(&models.Position{Name: name}).Error; err != nil {
			return fmt.Errorf("seeding position %q: %w", name, err)
		}
	}

	return nil
}
