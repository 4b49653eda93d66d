package services

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/weddingwrangle/weddingwrangle/models"
)

// rsvpAtLayout is the timestamp format used in CSV exports.
const rsvpAtLayout = "2006-01-02 15:04"

var exportHeader = []string{
	"ID",
	"Title",
	"First name",
	"Surname",
	"Email address",
	"Position",
	"RSVP",
	"RSVP at",
	"Partner first name",
	"Partner surname",
	"Dietaries",
}

// ExportGuestsCSV writes the full guest list as CSV in the same column
// layout the importer reads.
func ExportGuestsCSV(db *gorm.DB, w io.Writer) error {
	var guests []models.Guest
	if err := db.Preload("Title").Preload("Position").Preload("Partner").
		Preload("Dietaries").Order("id").Find(&guests).Error; err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	for _, guest := range guests {
		rsvpAt := ""
		if guest.RSVPAt != nil {
			rsvpAt = guest.RSVPAt.Format(rsvpAtLayout)
		}
		partnerFirst, partnerSurname := "", ""
		if guest.Partner != nil {
			partnerFirst = guest.Partner.FirstName
			partnerSurname = guest.Partner.Surname
		}

		row := []string{
			strconv.FormatUint(uint64(guest.ID), 10),
			guest.Title.Name,
			guest.FirstName,
			guest.Surname,
			guest.EmailAddress,
			guest.Position.Name,
			guest.RSVPStatus.Name(),
			rsvpAt,
			partnerFirst,
			partnerSurname,
			formatDietaryList(guest.Dietaries),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatDietaryList renders dietaries as a bracketed list of quoted names,
// the shape parseDietaryList reads back.
func formatDietaryList(dietaries []models.Dietary) string {
	names := make([]string, len(dietaries))
	for i, dietary := range dietaries {
		names[i] = "'" + dietary.Name + "'"
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// QRImage renders a guest's RSVP QR code; injectable so tests can avoid
// PNG generation.
type QRImage func(url string) ([]byte, error)

// ExportQRCodes writes a zip archive containing one QR PNG per guest, each
// named after the guest it belongs to.
func ExportQRCodes(db *gorm.DB, baseURL string, qr QRImage, w io.Writer) error {
	var guests []models.Guest
	if err := db.Order("id").Find(&guests).Error; err != nil {
		return err
	}

	archive := zip.NewWriter(w)
	for _, guest := range guests {
		image, err := qr(RSVPURL(baseURL, guest.RSVPLink))
		if err != nil {
			return fmt.Errorf("qr code for %s: %w", guest.FullName(), err)
		}

		name := strings.ToLower(guest.FirstName) + "_" + strings.ToLower(guest.Surname) + "_qr.png"
		file, err := archive.Create(name)
		if err != nil {
			return err
		}
		if _, err := file.Write(image); err != nil {
			return err
		}
	}
	return archive.Close()
}
