package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/weddingwrangle/weddingwrangle/database"
	"github.com/weddingwrangle/weddingwrangle/models"
)

// openTestDB returns a migrated, seeded in-memory database unique to the
// calling test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db))
	return db
}

func lookupTitle(t *testing.T, db *gorm.DB, name string) models.Title {
	t.Helper()
	var title models.Title
	require.NoError(t, db.Where("name = ?", name).First(&title).Error)
	return title
}

func lookupPosition(t *testing.T, db *gorm.DB, name string) models.Position {
	t.Helper()
	var position models.Position
	require.NoError(t, db.Where("name = ?", name).First(&position).Error)
	return position
}

func createDietary(t *testing.T, db *gorm.DB, name string) models.Dietary {
	t.Helper()
	dietary := models.Dietary{Name: name}
	require.NoError(t, db.Create(&dietary).Error)
	return dietary
}

// createTestGuest persists a guest through the staff pipeline.
func createTestGuest(t *testing.T, db *gorm.DB, firstName, surname string, status models.RSVPStatus) *models.Guest {
	t.Helper()

	guest, err := CreateGuest(db, GuestEdit{
		TitleID:      lookupTitle(t, db, "Mr").ID,
		FirstName:    firstName,
		Surname:      surname,
		PositionID:   lookupPosition(t, db, models.PositionGuest).ID,
		RSVPStatus:   status,
		EmailAddress: strings.ToLower(firstName) + "@example.com",
	})
	require.NoError(t, err)
	return guest
}

// audienceNames returns the names of the audiences a guest belongs to.
func audienceNames(t *testing.T, db *gorm.DB, guestID uint) []string {
	t.Helper()

	var guest models.Guest
	require.NoError(t, db.Preload("Audiences").First(&guest, guestID).Error)

	names := make([]string, len(guest.Audiences))
	for i, audience := range guest.Audiences {
		names[i] = audience.Name
	}
	return names
}
