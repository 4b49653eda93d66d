package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddingwrangle/weddingwrangle/database"
	"github.com/weddingwrangle/weddingwrangle/models"
	"github.com/weddingwrangle/weddingwrangle/services"
	"github.com/weddingwrangle/weddingwrangle/utils"
)

type RSVPInput struct {
	EmailAddress string `json:"email_address" binding:"omitempty,email"`
	RSVPStatus   string `json:"rsvp_status" binding:"required"`
	DietaryIDs   []uint `json:"dietary_ids"`
}

// statusChoice is one selectable status with its display label.
type statusChoice struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func statusChoices() []statusChoice {
	statuses := models.AllRSVPStatuses()
	choices := make([]statusChoice, len(statuses))
	for i, status := range statuses {
		choices[i] = statusChoice{Name: string(status), Label: status.Label()}
	}
	return choices
}

// GetRSVP returns the RSVP page data for a guest, looked up by RSVP link
func GetRSVP(c *gin.Context) {
	var guest models.Guest
	if err := database.DB.Preload("Dietaries").Preload("Partner").
		Where("rsvp_link = ?", c.Param("rsvp_link")).First(&guest).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "RSVP link not found"})
		return
	}

	var dietaries []models.Dietary
	if err := database.DB.Order("name").Find(&dietaries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dietaries"})
		return
	}

	response := gin.H{
		"guest":     guest,
		"statuses":  statusChoices(),
		"dietaries": dietaries,
	}
	// Partner shortcut: let a couple answer for each other from one page.
	if guest.Partner != nil {
		response["partner_rsvp_link"] = guest.Partner.RSVPLink
	}

	c.JSON(http.StatusOK, response)
}

// SubmitRSVP records a guest's own RSVP response
func SubmitRSVP(c *gin.Context) {
	var input RSVPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guest, err := services.SubmitRSVP(database.DB, c.Param("rsvp_link"), services.RSVPSubmission{
		EmailAddress: input.EmailAddress,
		RSVPStatus:   models.RSVPStatus(input.RSVPStatus),
		DietaryIDs:   input.DietaryIDs,
	})
	if err != nil {
		if errors.Is(err, services.ErrGuestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "RSVP link not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Thank you for your RSVP, " + guest.FirstName,
		"guest":   guest,
	})
}

// GetQRCode serves the PNG QR code pointing at a guest's RSVP page
func GetQRCode(c *gin.Context) {
	var guest models.Guest
	if err := database.DB.Where("rsvp_link = ?", c.Param("rsvp_link")).
		First(&guest).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "RSVP link not found"})
		return
	}

	image, err := utils.RSVPQRCode(services.RSVPURL(BaseURL, guest.RSVPLink))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", image)
}
