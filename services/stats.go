package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/weddingwrangle/weddingwrangle/models"
)

// AttendingStats is one day's cumulative RSVP picture.
type AttendingStats struct {
	Date      time.Time `json:"date"`
	Attending int64     `json:"attending"`
	Declined  int64     `json:"declined"`
	Pending   int64     `json:"pending"`
	Total     int64     `json:"total"`
}

// AttendanceStats returns one entry per day from the first guest's creation
// to now: how many guests had accepted or declined by that date, and how
// many invited guests were still pending.
func AttendanceStats(db *gorm.DB) ([]AttendingStats, error) {
	var first models.Guest
	if err := db.Order("created_at").First(&first).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []AttendingStats{}, nil
		}
		return nil, err
	}

	days := int(time.Since(first.CreatedAt).Hours() / 24)
	stats := make([]AttendingStats, 0, days+1)
	for day := 0; day <= days; day++ {
		date := first.CreatedAt.AddDate(0, 0, day)
		entry, err := loadAttendingStats(db, date)
		if err != nil {
			return nil, err
		}
		stats = append(stats, entry)
	}
	return stats, nil
}

func loadAttendingStats(db *gorm.DB, date time.Time) (AttendingStats, error) {
	stats := AttendingStats{Date: date}

	if err := db.Model(&models.Guest{}).
		Where("rsvp_at <= ? AND rsvp_status = ?", date, models.RSVPAccepted).
		Count(&stats.Attending).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Guest{}).
		Where("rsvp_at <= ? AND rsvp_status = ?", date, models.RSVPDeclined).
		Count(&stats.Declined).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Guest{}).
		Where("created_at <= ? AND rsvp_status = ?", date, models.RSVPPending).
		Count(&stats.Pending).Error; err != nil {
		return stats, err
	}

	stats.Total = stats.Attending + stats.Declined + stats.Pending
	return stats, nil
}
