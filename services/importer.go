package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/weddingwrangle/weddingwrangle/models"
)

// MaxUploadBytes is the CSV upload size limit.
const MaxUploadBytes = 2 * 1024 * 1024

// Import column positions, matching the export layout.
const (
	colTitle = iota + 1
	colFirstName
	colSurname
	colEmail
	colPosition
	_ // RSVP status, ignored: imported guests always start Pending
	_ // RSVP at, ignored
	colPartnerFirstName
	colPartnerSurname
	colDietaries
)

const importColumns = 11

// deferredPartner records a partner declared by name in a CSV row, resolved
// after every row has been imported.
type deferredPartner struct {
	guestID   uint
	firstName string
	surname   string
}

// ImportGuests replaces the entire guest table with the rows of the given
// CSV file. The delete and reimport run in one transaction: a bad row rolls
// the whole import back. Returns the number of guests created.
//
// Every imported guest starts Pending regardless of any status column and
// is placed directly in the two default audiences. Partner pairs declared
// by name are resolved in a second pass and linked one-directionally; the
// reciprocal link is completed on the guest's next staff save.
func ImportGuests(db *gorm.DB, file io.Reader) (int, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil { // header row
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("csv file is empty")
		}
		return 0, fmt.Errorf("reading csv header: %w", err)
	}

	imported := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := deleteAllGuests(tx); err != nil {
			return err
		}

		var defaults []models.Audience
		if err := tx.Where("name IN ?",
			[]string{models.AudiencePotential, models.AudienceAwaiting}).
			Find(&defaults).Error; err != nil {
			return err
		}

		var partners []deferredPartner
		line := 1
		for {
			row, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			line++
			if err != nil {
				return fmt.Errorf("reading csv row %d: %w", line, err)
			}
			if len(row) < importColumns {
				return fmt.Errorf("row %d has %d columns, expected %d", line, len(row), importColumns)
			}

			guest, err := importRow(tx, row, defaults)
			if err != nil {
				return fmt.Errorf("row %d: %w", line, err)
			}
			imported++

			if row[colPartnerFirstName] != "" {
				partners = append(partners, deferredPartner{
					guestID:   guest.ID,
					firstName: row[colPartnerFirstName],
					surname:   row[colPartnerSurname],
				})
			}
		}

		return resolvePartners(tx, partners)
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int("guests", imported).Msg("guest list imported")
	return imported, nil
}

func importRow(tx *gorm.DB, row []string, defaults []models.Audience) (*models.Guest, error) {
	var title models.Title
	if err := tx.Where("name = ?", row[colTitle]).First(&title).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("title %q not found", row[colTitle])
		}
		return nil, err
	}

	var position models.Position
	if err := tx.Where("name = ?", row[colPosition]).First(&position).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("position %q not found", row[colPosition])
		}
		return nil, err
	}

	link, err := uniqueRSVPLink(tx)
	if err != nil {
		return nil, err
	}

	guest := models.Guest{
		TitleID:      title.ID,
		FirstName:    row[colFirstName],
		Surname:      row[colSurname],
		EmailAddress: row[colEmail],
		PositionID:   position.ID,
		RSVPStatus:   models.RSVPPending,
		RSVPLink:     link,
	}
	if err := tx.Create(&guest).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&guest).Association("Audiences").Append(&defaults); err != nil {
		return nil, err
	}

	for _, name := range parseDietaryList(row[colDietaries]) {
		var dietary models.Dietary
		if err := tx.Where("name = ?", name).First(&dietary).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // unknown dietary tags are skipped, not an error
			}
			return nil, err
		}
		if err := tx.Model(&guest).Association("Dietaries").Append(&dietary); err != nil {
			return nil, err
		}
	}

	return &guest, nil
}

// parseDietaryList splits a stringified list like "['Vegan', 'Gluten free']"
// into its names, stripping bracket and quote characters.
func parseDietaryList(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		cleaner := strings.NewReplacer("[", "", "]", "", "'", "", `"`, "")
		name := strings.TrimSpace(cleaner.Replace(part))
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// resolvePartners links each deferred partner pair by exact name match.
// Only the declaring side is linked here.
func resolvePartners(tx *gorm.DB, partners []deferredPartner) error {
	for _, p := range partners {
		var partner models.Guest
		if err := tx.Where("first_name = ? AND surname = ?", p.firstName, p.surname).
			First(&partner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("partner %s %s not found", p.firstName, p.surname)
			}
			return err
		}
		if err := tx.Model(&models.Guest{ID: p.guestID}).
			Update("partner_id", partner.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteAllGuests wipes the guest table and its association rows, including
// email history and audience memberships.
func deleteAllGuests(tx *gorm.DB) error {
	for _, table := range []string{"guest_dietaries", "guest_audiences", "guest_emails"} {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	if err := tx.Exec("UPDATE guests SET partner_id = NULL").Error; err != nil {
		return err
	}
	return tx.Where("1 = 1").Delete(&models.Guest{}).Error
}
