package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddingwrangle/weddingwrangle/database"
	"github.com/weddingwrangle/weddingwrangle/models"
	"github.com/weddingwrangle/weddingwrangle/services"
)

type EmailInput struct {
	Subject    string `json:"subject" binding:"required,max=100"`
	Text       string `json:"text" binding:"required"`
	AudienceID uint   `json:"audience_id" binding:"required"`
}

// GetEmails lists sent campaigns with their recipient counts
func GetEmails(c *gin.Context) {
	var emails []models.Email
	if err := database.DB.Preload("Audience").Preload("Guests").
		Where("date_sent IS NOT NULL").Order("date_sent DESC").
		Find(&emails).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch emails"})
		return
	}

	type emailSummary struct {
		models.Email
		RecipientCount int `json:"recipient_count"`
	}
	summaries := make([]emailSummary, len(emails))
	for i, email := range emails {
		summaries[i] = emailSummary{Email: email, RecipientCount: len(email.Guests)}
	}

	c.JSON(http.StatusOK, gin.H{"emails": summaries})
}

// CreateEmail composes a new campaign
func CreateEmail(c *gin.Context) {
	var input EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var audience models.Audience
	if err := database.DB.First(&audience, input.AudienceID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audience not found"})
		return
	}

	email := models.Email{
		Subject:    input.Subject,
		Text:       input.Text,
		AudienceID: audience.ID,
	}
	if err := database.DB.Create(&email).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create email"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Email created successfully",
		"email":   email,
	})
}

// GetEmail returns one campaign, its recipients and whether its audience
// holds guests that cannot be contacted
func GetEmail(c *gin.Context) {
	var email models.Email
	if err := database.DB.Preload("Audience").Preload("Guests").
		First(&email, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		return
	}

	uncontactable, err := services.UncontactableGuests(database.DB, email.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to inspect audience"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":                email,
		"uncontactable_guests": uncontactable,
	})
}

// SendEmail dispatches a campaign to its audience
func SendEmail(c *gin.Context) {
	var id uint
	if _, err := fmt.Sscan(c.Param("id"), &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email ID"})
		return
	}

	sent, err := services.SendCampaign(database.DB, AppMailer, BaseURL, FromAddress, id)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
			"sent":  sent,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email sent successfully",
		"sent":    sent,
	})
}
