package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weddingwrangle/weddingwrangle/database"
	"github.com/weddingwrangle/weddingwrangle/models"
)

// GetReferenceData returns the lookup tables the staff forms are built from
func GetReferenceData(c *gin.Context) {
	var titles []models.Title
	var positions []models.Position
	var dietaries []models.Dietary
	var starters []models.Starter
	var mains []models.Main

	for _, query := range []struct {
		dest any
	}{
		{&titles}, {&positions}, {&dietaries}, {&starters}, {&mains},
	} {
		if err := database.DB.Order("id").Find(query.dest).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reference data"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"titles":    titles,
		"positions": positions,
		"dietaries": dietaries,
		"starters":  starters,
		"mains":     mains,
		"statuses":  statusChoices(),
	})
}

// GetAudiences lists all audiences with their member counts
func GetAudiences(c *gin.Context) {
	var audiences []models.Audience
	if err := database.DB.Preload("Guests").Order("id").Find(&audiences).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audiences"})
		return
	}

	type audienceSummary struct {
		models.Audience
		GuestCount int `json:"guest_count"`
	}
	summaries := make([]audienceSummary, len(audiences))
	for i, audience := range audiences {
		summaries[i] = audienceSummary{Audience: audience, GuestCount: len(audience.Guests)}
	}

	c.JSON(http.StatusOK, gin.H{"audiences": summaries})
}
