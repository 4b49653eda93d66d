package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weddingwrangle/weddingwrangle/database"
	"github.com/weddingwrangle/weddingwrangle/models"
	"github.com/weddingwrangle/weddingwrangle/services"
	"github.com/weddingwrangle/weddingwrangle/utils"
)

type GuestInput struct {
	TitleID      uint   `json:"title_id" binding:"required"`
	FirstName    string `json:"first_name" binding:"required,max=30"`
	Surname      string `json:"surname" binding:"required,max=30"`
	PositionID   uint   `json:"position_id" binding:"required"`
	RSVPStatus   string `json:"rsvp_status" binding:"required"`
	EmailAddress string `json:"email_address" binding:"omitempty,email"`
	DietaryIDs   []uint `json:"dietary_ids"`
	PartnerID    *uint  `json:"partner_id"`
}

func (in GuestInput) edit() services.GuestEdit {
	return services.GuestEdit{
		TitleID:      in.TitleID,
		FirstName:    in.FirstName,
		Surname:      in.Surname,
		PositionID:   in.PositionID,
		RSVPStatus:   models.RSVPStatus(in.RSVPStatus),
		EmailAddress: in.EmailAddress,
		DietaryIDs:   in.DietaryIDs,
		PartnerID:    in.PartnerID,
	}
}

// GetGuests returns the full guest list with its relations
func GetGuests(c *gin.Context) {
	var guests []models.Guest
	if err := database.DB.Preload("Title").Preload("Position").Preload("Partner").
		Preload("Dietaries").Preload("Audiences").Order("surname, first_name").
		Find(&guests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch guests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guests": guests})
}

// GetGuest returns one guest by ID
func GetGuest(c *gin.Context) {
	var guest models.Guest
	if err := database.DB.Preload("Title").Preload("Position").Preload("Partner").
		Preload("Dietaries").Preload("Audiences").Preload("Emails").
		First(&guest, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guest":    guest,
		"rsvp_url": services.RSVPURL(BaseURL, guest.RSVPLink),
	})
}

// CreateGuest creates a guest from the staff form
func CreateGuest(c *gin.Context) {
	var input GuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, err := services.CreateGuest(database.DB, input.edit())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Guest created successfully",
		"guest":   guest,
	})
}

// UpdateGuest applies a staff edit to a guest
func UpdateGuest(c *gin.Context) {
	var input GuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var id uint
	if _, err := fmt.Sscan(c.Param("id"), &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest ID"})
		return
	}

	guest, err := services.UpdateGuest(database.DB, id, input.edit())
	if err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Guest updated successfully",
		"guest":   guest,
	})
}

// DeleteGuest removes a guest
func DeleteGuest(c *gin.Context) {
	var id uint
	if _, err := fmt.Sscan(c.Param("id"), &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guest ID"})
		return
	}

	if err := services.DeleteGuest(database.DB, id); err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Guest not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete guest"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Guest deleted successfully"})
}

// UploadGuests replaces the guest list with an uploaded CSV file
func UploadGuests(c *gin.Context) {
	file, err := c.FormFile("csv")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}

	if file.Size > services.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("File must be %d bytes (2 MiB) or smaller", services.MaxUploadBytes),
		})
		return
	}

	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer reader.Close()

	imported, err := services.ImportGuests(database.DB, reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Guest list imported successfully",
		"imported": imported,
	})
}

// ExportGuests streams the guest list as a CSV attachment
func ExportGuests(c *gin.Context) {
	date := time.Now().Format("2006-01-02")
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=guest_export_%s.csv", date))

	if err := services.ExportGuestsCSV(database.DB, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export guests"})
		return
	}
}

// ExportQRCodes streams a zip of per-guest RSVP QR codes
func ExportQRCodes(c *gin.Context) {
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", "attachment; filename=weddingwrangle_qr_code_export.zip")

	if err := services.ExportQRCodes(database.DB, BaseURL, utils.RSVPQRCode, c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export QR codes"})
		return
	}
}

// GetStats returns the per-day cumulative attendance counts
func GetStats(c *gin.Context) {
	stats, err := services.AttendanceStats(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
